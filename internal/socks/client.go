package socks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// checkTimeout bounds the handshake performed by CheckConnection.
const checkTimeout = 2 * time.Second

// SOCKS5 protocol constants used by CheckConnection.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
	socks5CmdConnect   = 0x01
	socks5AddrDomain   = 0x03

	// checkHost is never resolved. The check only needs the proxy to
	// answer a CONNECT request, success or failure.
	checkHost = "sitecrawl-check.invalid"
	checkPort = 80
)

// Client dials through a SOCKS5 proxy.
type Client struct {
	address string
	dialer  proxy.ContextDialer
	timeout time.Duration
}

// NewClient creates a Client for the proxy at address ("host:port").
// timeout is the overall request timeout of clients made by NewHTTPClient;
// zero means none. The proxy is not contacted until it is used.
func NewClient(address string, timeout time.Duration) (*Client, error) {
	if !validAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	d, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, ErrNoContextDialer
	}

	return &Client{
		address: address,
		dialer:  cd,
		timeout: timeout,
	}, nil
}

func validAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// Address returns the proxy address.
func (c *Client) Address() string {
	return c.address
}

// URL returns the proxy as a socks5:// URL, the form browsers accept.
func (c *Client) URL() string {
	return "socks5://" + c.address
}

// CheckConnection performs a SOCKS5 greeting and CONNECT request against
// the proxy and reports whether it behaves like an unauthenticated SOCKS5
// proxy. Any CONNECT reply counts as success.
func (c *Client) CheckConnection(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return StatusTimeout
		}
		return StatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkTimeout)); err != nil {
		return StatusCannotConnect
	}

	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return StatusCannotConnect
	}

	reply := make([]byte, 2)
	if _, err := io.ReadFull(conn, reply); err != nil {
		return readFailure(err)
	}
	if reply[0] != socks5Version || reply[1] == socks5AuthNoAccept || reply[1] != socks5AuthNone {
		return StatusWrongType
	}

	req := []byte{socks5Version, socks5CmdConnect, 0x00, socks5AddrDomain, byte(len(checkHost))}
	req = append(req, checkHost...)
	req = append(req, byte(checkPort>>8), byte(checkPort&0xFF))
	if _, err := conn.Write(req); err != nil {
		return StatusCannotConnect
	}

	// version, reply code, reserved, address type
	head := make([]byte, 4)
	if _, err := io.ReadFull(conn, head); err != nil {
		return readFailure(err)
	}
	if head[0] != socks5Version {
		return StatusWrongType
	}
	return StatusOK
}

func readFailure(err error) Status {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return StatusTimeout
	}
	return StatusWrongType
}

// DialContext opens a connection to address through the proxy.
func (c *Client) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return c.dialer.DialContext(ctx, network, address)
}

// NewHTTPClient returns an http.Client whose connections all go through
// the proxy. Redirects are followed up to 10 hops.
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext:           c.dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
