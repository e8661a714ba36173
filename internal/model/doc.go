// Package model defines the data structures shared by the crawler, the
// report writers and the database.
//
// This package contains the following main types:
//   - URLRecord: a discovered URL with its derived hostname and path
//   - OutputFormat: the on-disk format of the URL artifact
//   - URLState: the lifecycle state of a URL inside one crawl
//   - Expansion: the outcome of expanding a single URL
//   - CrawlRun: the summary of one crawl run
//
// Types here carry no behaviour beyond small helpers so that the crawler,
// report and database packages can depend on them without import cycles.
package model
