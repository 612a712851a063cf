// Package cli is the interactive terminal client: a small REPL over the
// api.Client that keeps the decrypted vault in memory only while a session
// is open.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/passvault/passvault/internal/client/api"
	"github.com/passvault/passvault/internal/client/config"
	clientvault "github.com/passvault/passvault/internal/client/vault"
	"github.com/passvault/passvault/internal/cryptox"
)

type App struct {
	config *config.Config
	api    *api.Client
	reader *bufio.Reader

	// session state, valid between login and logout
	username string
	isAdmin  bool
	codec    *cryptox.Codec
	vault    *clientvault.Vault
	dirty    bool
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    api.New(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

// endSession wipes everything a session accumulated: the derived key, the
// decrypted vault and the server token.
func (a *App) endSession() {
	if a.codec != nil {
		a.codec.ClearKey()
	}
	a.codec = nil
	a.vault = nil
	a.dirty = false
	a.username = ""
	a.isAdmin = false
	a.api.Logout()
}

func (a *App) Run(ctx context.Context) {
	defer a.endSession()
	a.Root(ctx)
}
