// Package fetch holds the clients for the two upstream REST APIs: the
// survey microdata endpoint and the price-index endpoint. Neither client
// retries -- a transient failure aborts the run.
package fetch

import "errors"

// Error kinds, distinguishable with errors.Is. The run still fails fast on
// all of them; the kinds exist so callers and tests can tell apart what
// went wrong.
var (
	ErrNoCredential = errors.New("missing api credential")
	ErrNetwork      = errors.New("network failure")
	ErrMalformed    = errors.New("malformed response")
	ErrEmpty        = errors.New("empty result")
)
