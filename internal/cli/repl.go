package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// command is one REPL verb. auth commands need a logged in user.
type command struct {
	name  string
	usage string
	auth  bool
	run   func(ctx context.Context, args []string) error
}

// execIface is the surface the REPL needs. App satisfies it; tests provide a
// stub.
type execIface interface {
	isLoggedIn() bool
	commands() []command
}

// runREPL reads commands from reader until EOF or "exit"/"quit".
//
// The first token selects the command and the rest are passed as args.
// A failing command prints its error and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	cmds := a.commands()
	byName := make(map[string]command, len(cmds))
	for _, c := range cmds {
		byName[c.name] = c
	}

	for {
		fmt.Fprintf(w, "tk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printHelp(w, cmds, a.isLoggedIn())
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		c, ok := byName[name]
		if !ok {
			fmt.Fprintln(w, "Unknown command:", name)
			continue
		}
		if c.auth && !a.isLoggedIn() {
			fmt.Fprintln(w, "Please login first")
			continue
		}
		if err := c.run(ctx, args); err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}

func printHelp(w io.Writer, cmds []command, loggedIn bool) {
	fmt.Fprintln(w, "Available commands:")
	for _, c := range cmds {
		if c.auth && !loggedIn {
			continue
		}
		fmt.Fprintf(w, "  %-30s\n", c.usage)
	}
	fmt.Fprintf(w, "  %-30s\n", "exit")
}

func (a *App) commands() []command {
	return []command{
		{name: "register", usage: "register", run: a.Register},
		{name: "login", usage: "login", run: a.Login},
		{name: "logout", usage: "logout", auth: true, run: a.Logout},
		{name: "profile", usage: "profile", auth: true, run: a.Profile},
		{name: "users", usage: "users [delete <id>]", auth: true, run: a.Users},
		{name: "refresh", usage: "refresh", auth: true, run: a.Refresh},
		{name: "deliveries", usage: "deliveries", auth: true, run: a.Deliveries},
		{name: "start", usage: "start <code>", auth: true, run: a.Start},
		{name: "drop", usage: "drop <code> [number]", auth: true, run: a.Drop},
		{name: "deldrop", usage: "deldrop <code> <number>", auth: true, run: a.DeleteDrop},
		{name: "times", usage: "times <code>", auth: true, run: a.Times},
		{name: "finalize", usage: "finalize <code>", auth: true, run: a.Finalize},
		{name: "show", usage: "show [code]", auth: true, run: a.Show},
		{name: "delete", usage: "delete <code>", auth: true, run: a.DeleteDelivery},
		{name: "fuel", usage: "fuel [id]", auth: true, run: a.Fuel},
		{name: "fuelfinal", usage: "fuelfinal <id>", auth: true, run: a.FuelFinal},
		{name: "fuels", usage: "fuels", auth: true, run: a.Fuels},
		{name: "expense", usage: "expense <code>", auth: true, run: a.Expense},
		{name: "payees", usage: "payees <text>", auth: true, run: a.Payees},
		{name: "sync", usage: "sync", auth: true, run: a.Sync},
	}
}
