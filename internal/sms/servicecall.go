package sms

// The isms service-call below is a wire contract with the on-device SMS
// manager: transaction code 5 (sendText), caller package, then the ordered,
// typed parameter list. The ordering and type tags must stay exactly as the
// platform expects them. The message is passed as a single combined
// `s16 "<text>"` token; the device-side shell re-splits it.
const (
	ismsService         = "isms"
	ismsTransactionCode = "5"
	ismsCallerPackage   = "com.android.mms.service"
)

func serviceCallArgs(deviceID, phoneNumber, message string) []string {
	return []string{
		"-s", deviceID,
		"shell", "service", "call", ismsService, ismsTransactionCode,
		"i32", "0",
		"s16", ismsCallerPackage,
		"s16", "null",
		"s16", phoneNumber,
		"s16", "null",
		`s16 "` + message + `"`,
		"s16", "null",
		"s16", "null",
		"i32", "0",
		"i64", "0",
	}
}
