package socks

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultTorStartupTimeout bounds how long Start waits for Tor to bootstrap.
const DefaultTorStartupTimeout = 3 * time.Minute

// TorDaemon runs a private Tor process and exposes its SOCKS5 port, so a
// crawl can be routed through Tor without a separately managed daemon.
// Bootstrapping usually takes one to three minutes.
type TorDaemon struct {
	process        *tornago.TorProcess
	socksAddr      string
	startupTimeout time.Duration
}

// TorDaemonOption configures a TorDaemon.
type TorDaemonOption func(*TorDaemon)

// WithTorStartupTimeout sets the bootstrap timeout. Non-positive values
// keep the default.
func WithTorStartupTimeout(d time.Duration) TorDaemonOption {
	return func(t *TorDaemon) {
		if d > 0 {
			t.startupTimeout = d
		}
	}
}

// NewTorDaemon creates a TorDaemon. Nothing is started until Start.
func NewTorDaemon(opts ...TorDaemonOption) *TorDaemon {
	t := &TorDaemon{startupTimeout: DefaultTorStartupTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches Tor on OS-assigned ports and waits for it to bootstrap.
// If ctx is cancelled first, Start returns ctx.Err() and the process is
// stopped as soon as the launch returns.
func (t *TorDaemon) Start(ctx context.Context) error {
	if t.process != nil {
		return nil
	}

	// ":0" lets the OS pick free ports.
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(t.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	type launch struct {
		process *tornago.TorProcess
		err     error
	}
	done := make(chan launch, 1)
	go func() {
		p, err := tornago.StartTorDaemon(launchCfg)
		done <- launch{process: p, err: err}
	}()

	select {
	case l := <-done:
		if l.err != nil {
			return fmt.Errorf("%w: %w", ErrTorStart, l.err)
		}
		t.process = l.process
		t.socksAddr = l.process.SocksAddr()
		return nil
	case <-ctx.Done():
		go func() {
			if l := <-done; l.process != nil {
				_ = l.process.Stop() //nolint:errcheck // nobody is left to report to
			}
		}()
		return ctx.Err()
	}
}

// Stop shuts Tor down. It is safe to call on a daemon that never started.
func (t *TorDaemon) Stop() error {
	if t.process == nil {
		return nil
	}
	err := t.process.Stop()
	t.process = nil
	t.socksAddr = ""
	return err
}

// IsRunning reports whether Start succeeded and Stop has not been called.
func (t *TorDaemon) IsRunning() bool {
	return t.process != nil
}

// SocksAddr returns the daemon's SOCKS5 "host:port", or "" when stopped.
func (t *TorDaemon) SocksAddr() string {
	return t.socksAddr
}

// NewClient returns a Client for the daemon's SOCKS5 port.
func (t *TorDaemon) NewClient(timeout time.Duration) (*Client, error) {
	if !t.IsRunning() {
		return nil, ErrTorNotRunning
	}
	return NewClient(t.socksAddr, timeout)
}
