package config

import (
	"flag"
	"os"
	"time"

	"github.com/passvault/passvault/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line
// flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key (development fallback)
//	-k string   SSM parameter name holding the JWT signing key
//	-w          enable the proof-of-work gate
//	-m          require TOTP as a second factor
//	-t int      admin token validity, hours
//	-r int      user token validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-k", "-w", "-m", "-t", "-r", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningKeyParameter, "k", config.SigningKeyParameter, "SSM signing key parameter")

	fs.BoolVar(&config.Features.PowEnabled, "w", config.Features.PowEnabled, "enable proof-of-work gate")
	fs.BoolVar(&config.Features.TotpRequired, "m", config.Features.TotpRequired, "require TOTP second factor")

	adminTokenValidity := fs.Int("t", int(config.AdminTokenValidity.Hours()), "admin_token_validity (in hours)")
	userTokenValidity := fs.Int("r", int(config.UserTokenValidity.Minutes()), "user_token_validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AdminTokenValidity = time.Duration(*adminTokenValidity) * time.Hour
	config.UserTokenValidity = time.Duration(*userTokenValidity) * time.Minute
}
