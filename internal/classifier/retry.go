package classifier

import "time"

// acceptThreshold is the fraction of a batch that must resolve to a
// category for an attempt to be accepted.
const acceptThreshold = 0.7

// defaultBackoffUnit is the base delay for exponential backoff between
// attempts and the pacing pause between batches.
const defaultBackoffUnit = time.Second

// RetryPolicy drives the per-batch attempt loop. Sleep is injectable so
// tests can run the full retry ladder without real elapsed time.
type RetryPolicy struct {
	MaxRetries int                             // attempt budget per batch
	Threshold  float64                         // acceptance threshold, fraction of batch resolved
	Backoff    func(attempt int) time.Duration // delay before attempt+1, attempt-indexed from 0
	Sleep      func(time.Duration)             // side-effecting delay, time.Sleep in production
}

// DefaultRetryPolicy returns the production policy: maxRetries attempts
// (3 when non-positive), 0.7 acceptance, 2^attempt second backoff.
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return RetryPolicy{
		MaxRetries: maxRetries,
		Threshold:  acceptThreshold,
		Backoff:    ExponentialBackoff(defaultBackoffUnit),
		Sleep:      time.Sleep,
	}
}

// ExponentialBackoff returns a backoff schedule of unit * 2^attempt.
func ExponentialBackoff(unit time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return unit << uint(attempt)
	}
}
