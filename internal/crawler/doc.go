// Package crawler discovers every page reachable from a seed URL.
//
// # Architecture
//
// The Engine owns all mutable crawl state for one run: the visit ledger,
// the expansion counter and the run summary. It drains an explicit LIFO
// stack of pending URLs, so the crawl is depth-first without recursion.
//
// Each expansion asks a PageSource for the raw href values of a page,
// resolves them against the seed URL, filters them and records the new
// ones. Every Nth expansion the whole frontier is handed to a Checkpointer,
// and once more when the crawl ends.
//
// # Page sources
//
//   - HTTPSource fetches pages with net/http and parses them with
//     golang.org/x/net/html. No JavaScript is executed.
//   - BrowserSource drives one headless Chrome session through chromedp,
//     so links inserted by scripts are found as well.
//
// # URL lifecycle
//
//	Undiscovered -> Discovered -> Expanding -> Expanded
//
// A URL is expanded at most once per run. Failed fetches are not retried.
//
// # Usage
//
//	engine := crawler.NewEngine(seed, crawler.NewHTTPSource(), saver,
//	    crawler.WithLogger(logger),
//	    crawler.WithCheckpointEvery(10),
//	)
//	run, err := engine.Run(ctx)
package crawler
