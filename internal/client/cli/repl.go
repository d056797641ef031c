package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Expiring(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Update(ctx context.Context) error
	Delete(ctx context.Context) error
	AttachImage(ctx context.Context) error
	Sync(ctx context.Context, args []string) error
	History(ctx context.Context) error
	Conflicts(ctx context.Context) error
	Devices(ctx context.Context) error
	RemoveDevice(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the PaperTrail CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help              — show available commands
//	  - add               — add a document record
//	  - list              — list documents
//	  - show              — show a single document (interactive ID prompt)
//	  - search <text>     — find documents by text
//	  - expiring [days]   — documents expiring soon (default 30 days)
//	  - stats             — aggregate counters
//	  - update            — edit a document
//	  - delete            — delete a document
//	  - attach            — attach an image to a document
//	  - sync [force]      — synchronize with the server
//	  - history           — recent sync attempts
//	  - conflicts         — server-side conflicted records
//	  - devices           — registered devices
//	  - rmdevice          — deactivate a device
//	  - logout            — log out
//	  - exit | quit       — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pt> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add, (l)ist, show, search, expiring, stats, update, delete, attach, sync, history, conflicts, devices, rmdevice, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "add":
			_ = a.Add(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx)

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <text>")
				continue
			}
			_ = a.Search(ctx, strings.Join(args, " "))

		case "expiring":
			_ = a.Expiring(ctx, args)

		case "stats":
			_ = a.Stats(ctx)

		case "update":
			_ = a.Update(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "attach":
			_ = a.AttachImage(ctx)

		case "sync":
			_ = a.Sync(ctx, args)

		case "history":
			_ = a.History(ctx)

		case "conflicts":
			_ = a.Conflicts(ctx)

		case "devices":
			_ = a.Devices(ctx)

		case "rmdevice":
			_ = a.RemoveDevice(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// Root starts the REPL on stdin and blocks until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to PaperTrail CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) getStatus() string {
	if a.email == "" {
		return "(not logged in)"
	}
	return "(" + a.email + ")"
}
