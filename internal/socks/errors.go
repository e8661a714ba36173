package socks

import "errors"

// Proxy errors. Status.Error maps check results onto these.
var (
	// ErrNotSOCKS5 is returned when the proxy answers but does not speak
	// SOCKS5 without authentication.
	ErrNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy accepting unauthenticated clients")

	// ErrCannotConnect is returned when no TCP connection to the proxy
	// could be established.
	ErrCannotConnect = errors.New("cannot connect to proxy")

	// ErrTimeout is returned when the proxy did not answer in time.
	ErrTimeout = errors.New("timeout connecting to proxy")

	// ErrInvalidAddress is returned when the proxy address is not host:port.
	ErrInvalidAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrTorNotRunning is returned when a client is requested from a Tor
	// daemon that has not been started.
	ErrTorNotRunning = errors.New("tor daemon is not running")

	// ErrTorStart wraps failures to launch or bootstrap the Tor daemon.
	ErrTorStart = errors.New("failed to start tor daemon")

	// ErrNoContextDialer is returned when the underlying dialer cannot
	// honour a context.
	ErrNoContextDialer = errors.New("proxy dialer does not support contexts")
)

// Status is the outcome of Client.CheckConnection.
type Status int

const (
	// StatusOK means the proxy completed a SOCKS5 handshake.
	StatusOK Status = iota
	// StatusWrongType means something answered that is not a usable SOCKS5 proxy.
	StatusWrongType
	// StatusCannotConnect means the TCP connection failed.
	StatusCannotConnect
	// StatusTimeout means the proxy did not answer in time.
	StatusTimeout
)

// String returns a short description of s.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWrongType:
		return "wrong type (not SOCKS5)"
	case StatusCannotConnect:
		return "cannot connect"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the sentinel for s, or nil for StatusOK.
func (s Status) Error() error {
	switch s {
	case StatusOK:
		return nil
	case StatusWrongType:
		return ErrNotSOCKS5
	case StatusCannotConnect:
		return ErrCannotConnect
	case StatusTimeout:
		return ErrTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
