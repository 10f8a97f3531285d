package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/spf13/cobra"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// onlineCheckInterval is how often the shell pings the backend.
const onlineCheckInterval = 5 * time.Second

// runREPL reads command lines from scanner and hands each one to exec until
// EOF, "exit" or "quit". A failing command is reported and the loop goes on.
func runREPL(ctx context.Context, exec func(ctx context.Context, args []string) error, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("teamboard %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "shell":
			printlnFn("Already in the shell")
			continue
		}

		if err := exec(ctx, parts); err != nil {
			printlnFn(common.UserMessage(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (a *App) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively, keeping the live feed open",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

			printlnFn("Welcome to teamboard (type 'help' for commands, 'exit' to leave)")
			runREPL(ctx, a.execute, a.getStatus, bufio.NewScanner(lineReader{a.reader}))
			return nil
		},
	}
}

// lineReader hands out at most one line per Read, so prompts of the
// commands run by the shell read from the same buffer after it.
type lineReader struct {
	r *bufio.Reader
}

func (l lineReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := l.r.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
		if b == '\n' {
			break
		}
	}
	return n, nil
}
