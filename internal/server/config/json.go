package config

import (
	"encoding/json"
	"os"

	"github.com/passvault/passvault/internal/flagx"
	"github.com/passvault/passvault/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration. Pointer fields
// distinguish "absent" from "zero": absent fields keep their defaults.
type JsonConfig struct {
	DatabaseDSN *string `json:"database_dsn"`
	Issuer      *string `json:"issuer"`

	PowEnabled      *bool `json:"pow_enabled"`
	TotpRequired    *bool `json:"totp_required"`
	HoneypotEnabled *bool `json:"honeypot_enabled"`

	PowDifficultyLow    *int            `json:"pow_difficulty_low"`
	PowDifficultyMedium *int            `json:"pow_difficulty_medium"`
	PowDifficultyHigh   *int            `json:"pow_difficulty_high"`
	PowTTL              *timex.Duration `json:"pow_ttl"`

	AdminTokenValidity *timex.Duration `json:"admin_token_validity"`
	UserTokenValidity  *timex.Duration `json:"user_token_validity"`

	LockoutThreshold *int            `json:"lockout_threshold"`
	LockoutWindow    *timex.Duration `json:"lockout_window"`

	MaxVaultBytes *int64 `json:"max_vault_bytes"`

	SigningKeyParameter *string `json:"signing_key_parameter"`
	SecretKey           *string `json:"secret_key"`

	S3RootUser     *string `json:"s3_root_user"`
	S3RootPassword *string `json:"s3_root_password"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`

	AdminUsername *string `json:"admin_username"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c/-config command-line
// flags; when no path is given, nothing is loaded. A file that cannot be
// read or parsed is a startup error and panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	applyJson(config, c)
}

func applyJson(config *Config, c *JsonConfig) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.Issuer, c.Issuer)

	setBool(&config.Features.PowEnabled, c.PowEnabled)
	setBool(&config.Features.TotpRequired, c.TotpRequired)
	setBool(&config.Features.HoneypotEnabled, c.HoneypotEnabled)

	setInt(&config.PowDifficulty.Low, c.PowDifficultyLow)
	setInt(&config.PowDifficulty.Medium, c.PowDifficultyMedium)
	setInt(&config.PowDifficulty.High, c.PowDifficultyHigh)
	if c.PowTTL != nil {
		config.PowTTL = c.PowTTL.Duration
	}

	if c.AdminTokenValidity != nil {
		config.AdminTokenValidity = c.AdminTokenValidity.Duration
	}
	if c.UserTokenValidity != nil {
		config.UserTokenValidity = c.UserTokenValidity.Duration
	}

	setInt(&config.LockoutThreshold, c.LockoutThreshold)
	if c.LockoutWindow != nil {
		config.LockoutWindow = c.LockoutWindow.Duration
	}

	if c.MaxVaultBytes != nil {
		config.MaxVaultBytes = *c.MaxVaultBytes
	}

	setString(&config.SigningKeyParameter, c.SigningKeyParameter)
	setString(&config.SecretKey, c.SecretKey)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	setString(&config.AdminUsername, c.AdminUsername)
}
