// Package pipeline runs the stages of one crawl in sequence.
//
// A run is a list of steps that share a *model.CrawlRun: the crawl itself,
// recording the run in the history database, and writing the summaries.
// Steps added with AddFinalStep run after the main steps even when the
// crawl was interrupted, so a cancelled run is still recorded and reported.
package pipeline
