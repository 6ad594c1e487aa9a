package session

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/daylight-sync/internal/config"
	domain "github.com/oshokin/daylight-sync/internal/domain/sun"
	"github.com/oshokin/daylight-sync/internal/logger"
)

// Commander is the capability exposed by one live session: send a command
// string, receive a string reply.
type Commander interface {
	Send(command string) (string, error)
	Close() error
}

// Dialer opens a Commander for a control socket path.
type Dialer func(socket string, timeout time.Duration) (Commander, error)

// Synchronizer fans a state change out to every reachable live session.
// Sessions come and go outside this tool's control, so every step is
// best-effort: a failing session is logged and skipped, never fatal.
type Synchronizer struct {
	// glob matches candidate control socket paths.
	glob string
	// timeout bounds connect and per-command exchanges for one session.
	timeout time.Duration
	// dial opens a session connection, overridable for tests.
	dial Dialer
}

// Option configures synchronizer behaviour.
type Option func(*Synchronizer)

// WithDialer overrides how session connections are opened.
func WithDialer(dial Dialer) Option {
	return func(s *Synchronizer) {
		if dial != nil {
			s.dial = dial
		}
	}
}

// NewSynchronizer creates a synchronizer discovering sockets via the glob.
// Empty arguments fall back to the package defaults.
func NewSynchronizer(glob string, timeout time.Duration, opts ...Option) *Synchronizer {
	if glob == "" {
		glob = config.DefaultSocketGlob
	}

	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	synchronizer := &Synchronizer{
		glob:    glob,
		timeout: timeout,
		dial:    dialUnixSocket,
	}

	for _, opt := range opts {
		opt(synchronizer)
	}

	return synchronizer
}

// SyncAll discovers live sessions and applies the target state to each.
// It returns the number of sessions updated; individual session failures are
// logged and counted but never abort the fan-out. The only error condition
// is a malformed glob pattern.
func (s *Synchronizer) SyncAll(ctx context.Context, target domain.State) (int, error) {
	sockets, err := filepath.Glob(s.glob)
	if err != nil {
		return 0, fmt.Errorf("discover session sockets: %w", err)
	}

	updated := 0

	for _, socket := range sockets {
		if err = s.syncOne(socket, target); err != nil {
			logger.WarnKV(ctx, "Skipping session", "socket", socket, "error", err)
			continue
		}

		logger.DebugKV(ctx, "Updated session", "socket", socket)

		updated++
	}

	logger.InfoKV(ctx, "Session fan-out finished",
		"discovered", len(sockets),
		"updated", updated,
		"failed", len(sockets)-updated)

	return updated, nil
}

// syncOne applies the background directive to a single session and reloads
// its active color scheme. The scheme does not react to background changes on
// its own, so it is queried and immediately re-applied to force a redraw.
func (s *Synchronizer) syncOne(socket string, target domain.State) error {
	commander, err := s.dial(socket, s.timeout)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	defer func() {
		_ = commander.Close()
	}()

	if _, err = commander.Send(target.Directive()); err != nil {
		return fmt.Errorf("set background: %w", err)
	}

	scheme, err := commander.Send("colorscheme")
	if err != nil {
		return fmt.Errorf("query color scheme: %w", err)
	}

	scheme = strings.TrimSpace(scheme)
	if scheme == "" {
		return nil
	}

	if _, err = commander.Send("colorscheme " + scheme); err != nil {
		return fmt.Errorf("reload color scheme: %w", err)
	}

	return nil
}

// socketCommander speaks the newline-delimited command protocol over a
// local socket connection.
type socketCommander struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// dialUnixSocket opens the control socket with a connect timeout.
func dialUnixSocket(socket string, timeout time.Duration) (Commander, error) {
	conn, err := net.DialTimeout("unix", socket, timeout)
	if err != nil {
		return nil, err
	}

	return &socketCommander{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Send writes one command line and reads one reply line, both bounded by the
// per-operation deadline so a stuck session cannot block the fan-out.
func (c *socketCommander) Send(command string) (string, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}

	if _, err := c.conn.Write([]byte(command + "\n")); err != nil {
		return "", err
	}

	reply, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(reply, "\n"), nil
}

// Close releases the socket connection.
func (c *socketCommander) Close() error {
	return c.conn.Close()
}
