// Package api is the outbound HTTP client for the vault server. It handles
// the proof-of-work handshake, bearer authentication and JSON codec so the
// interactive layer deals only in typed requests and results.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/passvault/passvault/internal/pow"
	"github.com/passvault/passvault/internal/server/admin"
	"github.com/passvault/passvault/internal/server/auth"
	"github.com/passvault/passvault/internal/server/requests"
	"github.com/passvault/passvault/internal/server/vault"
)

// Error is a non-2xx server response. Message carries the server's error
// text when the body was parseable, the raw body otherwise.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// Client talks to one vault server. The zero value is not usable; use New.
// Login stores the session token on success; subsequent calls send it as a
// bearer credential until Logout.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string {
	return c.token
}

// Logout drops the session token. The server keeps no session state, so
// there is nothing to call remotely.
func (c *Client) Logout() {
	c.token = ""
}

// FetchChallenge asks for a proof-of-work challenge for the given tier.
// A 204 response means the gate is disabled and no headers are needed;
// that case returns (nil, nil).
func (c *Client) FetchChallenge(ctx context.Context, tier string) (*pow.Challenge, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/pow/challenge?tier="+tier, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	challenge := &pow.Challenge{}
	if err := json.NewDecoder(resp.Body).Decode(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// Login performs the full login handshake: fetch a challenge, solve it
// locally, then post the credentials with the solution headers attached.
// The returned result carries the onboarding signals and the encryption
// salt; the session token is retained for subsequent calls.
func (c *Client) Login(ctx context.Context, loginReq requests.LoginRequest, adminSurface bool) (*auth.LoginResult, error) {

	tier, path := "medium", "/api/login"
	if adminSurface {
		tier, path = "high", "/api/admin/login"
	}

	challenge, err := c.FetchChallenge(ctx, tier)
	if err != nil {
		return nil, err
	}

	var headers http.Header
	if challenge != nil {
		solution, err := pow.Solve(ctx, challenge)
		if err != nil {
			return nil, err
		}
		headers = http.Header{}
		headers.Set(pow.HeaderSolution, solution)
		headers.Set(pow.HeaderNonce, challenge.Nonce)
		headers.Set(pow.HeaderTimestamp, fmt.Sprintf("%d", challenge.Timestamp))
	}

	result := &auth.LoginResult{}
	if err := c.doJSON(ctx, http.MethodPost, path, headers, loginReq, result); err != nil {
		return nil, err
	}

	c.token = result.Token
	return result, nil
}

// ChangePassword sets the real password during first login.
func (c *Client) ChangePassword(ctx context.Context, newPassword string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/password", nil,
		requests.ChangePasswordRequest{NewPassword: newPassword}, nil)
}

// TotpSetup requests a fresh TOTP secret for enrollment.
func (c *Client) TotpSetup(ctx context.Context) (*auth.TotpSetupResult, error) {
	result := &auth.TotpSetupResult{}
	if err := c.doJSON(ctx, http.MethodPost, "/api/totp/setup", nil, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// TotpVerify confirms the first authenticator code and activates the account.
func (c *Client) TotpVerify(ctx context.Context, code string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/totp/verify", nil,
		requests.TotpVerifyRequest{TotpCode: code}, nil)
}

// VaultGet fetches the encrypted vault blob.
func (c *Client) VaultGet(ctx context.Context) (*vault.GetResult, error) {
	result := &vault.GetResult{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/vault", nil, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// VaultPut stores a new encrypted vault blob.
func (c *Client) VaultPut(ctx context.Context, encryptedContent string) (*vault.PutResult, error) {
	result := &vault.PutResult{}
	err := c.doJSON(ctx, http.MethodPut, "/api/vault", nil,
		requests.VaultPutRequest{EncryptedContent: encryptedContent}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VaultDownload fetches the recovery export: ciphertext plus salt and
// algorithm parameters.
func (c *Client) VaultDownload(ctx context.Context) (*vault.DownloadResult, error) {
	result := &vault.DownloadResult{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/vault/download", nil, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateUser invites a new user (admin only). The one-time password in the
// result is shown exactly once.
func (c *Client) CreateUser(ctx context.Context, username string) (*admin.CreatedUser, error) {
	result := &admin.CreatedUser{}
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/users", nil,
		requests.CreateUserRequest{Username: username}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListUsers fetches the account overview (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]admin.UserSummary, error) {
	var result []admin.UserSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/users", nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// doJSON performs one JSON request/response cycle. A nil body sends no
// payload, a nil out discards the response body. The bearer token is
// attached when present.
func (c *Client) doJSON(ctx context.Context, method, path string, headers http.Header, body, out any) error {

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func responseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Error string `json:"error"`
	}
	message := string(raw)
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	return &Error{Status: resp.StatusCode, Message: message}
}
