// Package totp implements the second-factor engine: secret provisioning,
// otpauth URIs for authenticator apps, QR rendering and code verification.
package totp

import (
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/passvault/passvault/internal/common"
)

const (
	// Standard authenticator-app parameters: 6-digit codes, 30-second steps,
	// SHA-1, with a ±1 step verification window for clock drift.
	Digits = 6
	Period = 30
	Skew   = 1

	secretBytes = 20
	qrSizePx    = 256
)

// Engine verifies and provisions TOTP secrets for one issuing service.
type Engine struct {
	Issuer string
}

func NewEngine(issuer string) *Engine {
	return &Engine{Issuer: issuer}
}

// GenerateSecret returns a fresh shared secret, base32-encoded without
// padding as authenticator apps expect.
func (e *Engine) GenerateSecret() string {
	raw := common.GenerateRandByteArray(secretBytes)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
}

// ProvisioningURI builds the otpauth:// URI that authenticator apps import,
// with the service name as issuer and the username as account label.
func (e *Engine) ProvisioningURI(username, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", e.Issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", fmt.Sprintf("%d", Digits))
	v.Set("period", fmt.Sprintf("%d", Period))

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + e.Issuer + ":" + username,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// RenderQR encodes the provisioning URI as a PNG QR code. A failure here
// must not block provisioning: the caller still has the URI and the raw
// secret for manual entry.
func (e *Engine) RenderQR(uri string) ([]byte, error) {
	return qrcode.Encode(uri, qrcode.Medium, qrSizePx)
}

// RenderQRDataURL is RenderQR wrapped as a data: URL for direct embedding
// in client UIs.
func (e *Engine) RenderQRDataURL(uri string) (string, error) {
	png, err := e.RenderQR(uri)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Verify reports whether the code is valid for the secret at the current
// time, tolerating Skew steps of clock drift in either direction.
func (e *Engine) Verify(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
