// Package httpclient builds the outbound HTTP client used for store round
// trips. Store calls are blocking with no built-in timeout or retry — a
// failed call surfaces immediately and the caller aborts its pipeline — so
// the client only hardens connection handling, not request pacing.
package httpclient

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tucfis/shexpose/errors"
)

const maxRedirects = 10

// New creates the outbound HTTP client. A zero timeout means no timeout,
// which is the default for store calls.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.Newf("stopped after %d redirects", maxRedirects)
			}
			if err := ValidateURL(req.URL); err != nil {
				return errors.Wrap(err, "redirect blocked")
			}
			return nil
		},
		Transport: &http.Transport{
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// ValidateURL rejects endpoint URLs with unexpected schemes or embedded
// credentials before any request is made.
func ValidateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return errors.Newf("scheme %q not allowed", scheme)
	}
	if u.User != nil {
		return errors.New("credentials in URL are not allowed; configure auth separately")
	}
	return nil
}
