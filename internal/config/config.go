// Package config loads server configuration from environment variables
// (SMSBRIDGE_*) and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AdbPath        string        `mapstructure:"adb_path"`
	AdbPort        int           `mapstructure:"adb_port"`
	Listen         string        `mapstructure:"listen"`
	DBPath         string        `mapstructure:"db_path"`
	AutoConnect    bool          `mapstructure:"auto_connect"`
	DefaultDevice  string        `mapstructure:"default_device"`
	PairingTimeout time.Duration `mapstructure:"pairing_timeout"`
	Maintenance    bool          `mapstructure:"maintenance"`
	Debug          bool          `mapstructure:"debug"`
}

// Load reads configuration. file may be empty; then only defaults and the
// environment apply.
func Load(file string) (Config, error) {
	v := viper.New()
	v.SetDefault("adb_path", "/usr/bin/adb")
	v.SetDefault("adb_port", 5555)
	v.SetDefault("listen", ":8001")
	v.SetDefault("db_path", "smsbridge.db")
	v.SetDefault("auto_connect", false)
	v.SetDefault("default_device", "")
	v.SetDefault("pairing_timeout", 180*time.Second)
	v.SetDefault("maintenance", false)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("smsbridge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if c.AutoConnect && c.DefaultDevice == "" {
		return Config{}, errors.New("auto_connect requires default_device")
	}
	return c, nil
}
