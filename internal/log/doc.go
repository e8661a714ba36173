// Package log builds the slog loggers used by sitecrawl.
//
// Every logger returned by NewLogger wraps its handler in a SecureHandler,
// which masks attributes whose key names a credential and strips sensitive
// query parameters and userinfo from URL-valued attributes. Crawled sites
// routinely embed session identifiers and tokens in their links, and those
// links are logged at debug level for every skip decision.
//
// # Usage
//
//	level, err := log.ParseLevel("debug")
//	if err != nil {
//	    return err
//	}
//	logger := log.NewLogger(os.Stderr, level)
//	logger.Info("crawling page", "url", "https://example.com/a?sid=123")
//	// url=https://example.com/a?sid=***REDACTED***
package log
