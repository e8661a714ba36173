// Package urlfilter turns raw href values into absolute URL strings and
// applies the negative keyword rules that keep URLs out of the crawl
// frontier or out of the saved artifact.
//
// Resolution follows RFC 3986 against the seed URL, never against the page
// the href was found on. Nothing else is canonicalized: trailing slashes,
// letter case, query strings and fragments are preserved, so
// "https://x.com/a" and "https://x.com/a/" are different URLs.
package urlfilter
