// Package socks routes crawler traffic through a SOCKS5 proxy.
//
// A Client validates the proxy address, can check the proxy with a
// SOCKS5 handshake before a crawl starts, and builds http.Clients whose
// connections are dialed through the proxy.
//
// A TorDaemon starts a private Tor process through tornago and hands its
// SOCKS5 port to a Client, for crawling through Tor without a system daemon.
package socks
