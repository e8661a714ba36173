// Package main provides the entry point for the sitecrawl CLI.
//
// sitecrawl recursively crawls a website from a seed URL, collects every
// discovered URL, and periodically writes them to <hostname>.json or
// <hostname>.txt.
//
// Usage:
//
//	sitecrawl https://example.com
//	sitecrawl -o json --negative-crawl logout https://example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
