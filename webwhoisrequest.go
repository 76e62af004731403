// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// webwhoisRequest builds the GET request a WebWHOIS step issues against
// the token's current host/scheme/path. Connection: close is
// requested via req.Close so the single-use transport never attempts to
// reuse the one-shot connection [EPPConnFunc]'s HTTP sibling wraps.
func webwhoisRequest(cfg *Config, token *Token) (*http.Request, error) {
	u := &url.URL{
		Scheme: token.GetScheme(),
		Host:   token.GetHost(),
		Path:   cfg.WebWHOISPath,
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Close = true
	req.Host = token.GetHost()
	return req, nil
}

// webwhoisInterpret classifies an HTTP response: 200 is SUCCESS,
// 301/302 with a parseable Location is a redirect (the
// token's host/scheme are updated in place and redirect=true is returned;
// kind is unused by the caller in that case, since the chain has not
// resolved yet), and everything else is RESPONSE_FAILURE. The response
// body is always drained and closed here: callers never see an open body.
func webwhoisInterpret(resp *http.Response, token *Token) (kind OutcomeKind, redirect bool) {
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		return SUCCESS, false

	case resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound:
		location := resp.Header.Get("Location")
		target, err := url.Parse(location)
		if err != nil || target.Host == "" {
			return ResponseFailure, false
		}
		scheme := target.Scheme
		if scheme != "http" && scheme != "https" {
			return ResponseFailure, false
		}
		token.SetHost(target.Host)
		token.SetScheme(scheme)
		return "", true

	default:
		return ResponseFailure, false
	}
}

// webwhoisAddress returns the "host:port" address to dial for token's
// current host and scheme, using cfg's configured HTTP/HTTPS ports.
func webwhoisAddress(cfg *Config, token *Token) string {
	port := cfg.WebWHOISHTTPPort
	if token.GetScheme() == "https" {
		port = cfg.WebWHOISHTTPSPort
	}
	return fmt.Sprintf("%s:%d", token.GetHost(), port)
}
