package domain

import "errors"

// Fetch failure classes. ErrNotFound is permanent; the others are transient
// and eligible for bounded retry.
var (
	ErrNotFound    = errors.New("paper not found")
	ErrRateLimited = errors.New("rate limited")
	ErrNetwork     = errors.New("network error")
)

// Summarize failure classes. ErrAuth and ErrQuota abort the remaining batch;
// ErrTimeout is retried once; ErrModel fails only the current paper.
var (
	ErrAuth    = errors.New("authentication rejected")
	ErrQuota   = errors.New("quota exceeded")
	ErrTimeout = errors.New("request timed out")
	ErrModel   = errors.New("model error")
)

// FatalToRun reports whether err invalidates the rest of the batch.
// Retrying other papers with a bad credential or exhausted quota is pointless.
func FatalToRun(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrQuota)
}

// Transient reports whether a fetch error is worth retrying.
func Transient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNetwork)
}
