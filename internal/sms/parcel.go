package sms

import (
	"regexp"
)

// A successful service call answers with a non-empty result parcel: hex words
// followed by a quoted payload. The all-zero parcel, canonically
// "Result: Parcel(00000000    '....')", is the platform's empty answer and
// counts as a failed send, not an error.
var (
	parcelPattern = regexp.MustCompile(`Result: Parcel\(((?:[0-9a-fA-F]{8}[ \t]*)+)'([^']*)'\)`)
	nonZeroHex    = regexp.MustCompile(`[1-9a-fA-F]`)
)

func parcelIndicatesSuccess(stdout string) bool {
	m := parcelPattern.FindStringSubmatch(stdout)
	if m == nil {
		return false
	}
	// All-zero hex words mean the empty parcel regardless of how many words
	// the platform prints.
	return nonZeroHex.MatchString(m[1])
}
