package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/client/client"
	"github.com/dmitrijs2005/teamboard/internal/client/config"
	"github.com/dmitrijs2005/teamboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamboard/internal/client/stores"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	local    metadata.Repository
	backend  client.Client
	sessions *stores.SessionStore
	feed     *stores.FeedStore
	tasks    *stores.TaskStore

	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local database, connects to the backend and builds the
// stores. The caller must Close the app.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	local := metadata.NewSQLiteRepository(db)
	backend, err := client.NewTeamboardClient(c.ServerEndpointAddr, local, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := newApp(c, backend, local, logger, os.Stdin, os.Stdout, os.Stderr)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, backend client.Client, local metadata.Repository, logger logging.Logger, in io.Reader, out, errOut io.Writer) *App {
	sessions := stores.NewSessionStore(backend, local, c, logger)
	return &App{
		config:   c,
		logger:   logger.With("module", "cli"),
		local:    local,
		backend:  backend,
		sessions: sessions,
		feed:     stores.NewFeedStore(backend, sessions, logger),
		tasks:    stores.NewTaskStore(backend, sessions, logger),
		reader:   bufio.NewReader(in),
		out:      out,
		errOut:   errOut,
	}
}

// Start resumes the login kept on disk. An unreachable backend is not
// fatal: commands that need it fail on their own.
func (a *App) Start(ctx context.Context) {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if _, err := a.sessions.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "restore session", "error", err)
		if errors.Is(err, common.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) Close() {
	a.feed.Close()
	a.tasks.Close()
	a.sessions.Close()
	if err := a.backend.Close(); err != nil {
		a.logger.Warn(context.Background(), "close backend", "error", err)
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Run executes one command line and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if err := a.execute(ctx, args); err != nil {
		fmt.Fprintln(a.errOut, common.UserMessage(err))
		return 1
	}
	return 0
}

func (a *App) execute(ctx context.Context, args []string) error {
	cmd := a.Command()
	cmd.SetArgs(args)
	cmd.SetIn(a.reader)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		a.logger.Debug(ctx, "command failed", "args", args, "error", err)
	}
	return err
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// StartOnlineStatusWatcher pings the backend every interval until ctx is
// done and tracks whether it is reachable.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.backend.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// getStatus is shown in the shell prompt: who is signed in and whether the
// backend answers.
func (a *App) getStatus() string {
	s := ""
	if sess := a.sessions.Current(); sess != nil {
		s = sess.Identity.Email + " "
		if sess.Admin {
			s += "admin "
		}
	}
	if mode := a.getMode(); mode != "" {
		s += string(mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := a.config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}

func (a *App) requireSession() (*stores.Session, error) {
	s := a.sessions.Current()
	if s == nil {
		return nil, common.ErrNotAuthenticated
	}
	return s, nil
}

// waitSynced blocks until a store delivered its first snapshot, failed, or
// the request timeout passed.
func (a *App) waitSynced(ctx context.Context, changes <-chan struct{}, synced func() bool, failed func() error) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	for {
		if synced() {
			return nil
		}
		if err := failed(); err != nil {
			return err
		}
		select {
		case <-changes:
		case <-ctx.Done():
			return fmt.Errorf("%w: no data received", common.ErrUnavailable)
		}
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
