package backoff

import (
	"math/rand"
	"time"

	"pokedex-service/internal/pkg/neterr"
)

// jitterFraction bounds the random jitter added on top of the exponential
// delay: uniform in [0, jitterFraction * exponential].
const jitterFraction = 0.3

// Retryable reports whether a failed request may be attempted again.
// Timeouts, connectivity failures, and server-side errors are transient;
// 429 is the one client status worth retrying. Everything else is terminal.
func Retryable(err error) bool {
	ne, ok := neterr.As(err)
	if !ok {
		return false
	}
	switch ne.Kind {
	case neterr.KindTimeout, neterr.KindNoInternet, neterr.KindServerError:
		return true
	case neterr.KindRequestFailed:
		return ne.StatusCode >= 500 || ne.StatusCode == 429
	default:
		return false
	}
}

// Delay computes the sleep before retry number attempt (starting at 0):
// base * 2^attempt plus uniform jitter in [0, 0.3 * exponential].
func Delay(attempt int, base time.Duration) time.Duration {
	if base <= 0 || attempt < 0 {
		return 0
	}
	exponential := base << uint(attempt)
	maxJitter := int64(float64(exponential) * jitterFraction)
	if maxJitter <= 0 {
		return exponential
	}
	return exponential + time.Duration(rand.Int63n(maxJitter+1))
}
