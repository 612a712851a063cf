package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/passvault/passvault/internal/filex"
)

const exportDirName = "exports"

// Export downloads the recovery bundle (ciphertext, salt and algorithm
// parameters) and writes it under ./exports/. The file alone plus the
// account password suffices to decrypt the vault offline.
func (a *App) Export(ctx context.Context) error {
	if !a.isLoggedIn() || a.isAdmin {
		fmt.Println("Log in as a regular user first.")
		return nil
	}

	result, err := a.api.VaultDownload(ctx)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureSubDir(exportDirName)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("vault-%s-%s.json", a.username, time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return err
	}

	fmt.Printf("Export written to %s\n", path)
	return nil
}
