package crawler

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEngineFinished is returned by Run when the engine already ran.
	ErrEngineFinished = errors.New("crawl engine already finished")

	// ErrBrowserNotOpen is returned by BrowserSource.FetchLinks before Open.
	ErrBrowserNotOpen = errors.New("browser session is not open")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}
