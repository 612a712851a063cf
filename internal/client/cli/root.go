package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Add(ctx context.Context) error
	Delete(ctx context.Context) error
	Save(ctx context.Context) error
	Export(ctx context.Context) error
	Invite(ctx context.Context) error
	Users(ctx context.Context) error
}

func (a *App) getStatus() string {
	if a.username == "" {
		return ""
	}
	status := a.username
	if a.isAdmin {
		status += " admin"
	}
	if a.dirty {
		status += " *"
	}
	return fmt.Sprintf("(%s)", status)
}

func (a *App) Root(ctx context.Context) {
	printlnFn("PassVault client (type 'help' for commands)")

	_ = a.Login(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// runREPL reads commands line by line and dispatches them. Errors from the
// handlers are reported by the handlers themselves; the loop only cares
// about I/O. It exits on EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		fmt.Printf("pv %s> ", statusFn())
		if !scanner.Scan() {
			return
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, show, add, delete, save, export, invite, users, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx)

		case "add":
			_ = a.Add(ctx)

		case "delete", "rm":
			_ = a.Delete(ctx)

		case "save":
			_ = a.Save(ctx)

		case "export":
			_ = a.Export(ctx)

		case "invite":
			_ = a.Invite(ctx)

		case "users":
			_ = a.Users(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command: " + parts[0])
		}
	}
}
