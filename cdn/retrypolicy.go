package cdn

import (
	"math"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy is the exponential-backoff-with-jitter schedule governing
// repeated attempts against one server before the pool fails over to the
// next eligible one: delay = min(Max, Initial*Multiplier^attempt), then
// sampled uniformly in [delay*(1-Jitter), delay*(1+Jitter)], clamped to
// zero. MaxRetries is the total number of attempts made against a single
// server, not a cross-host failover count.
type RetryPolicy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
	MaxRetries int
}

// DefaultRetryPolicy matches spec.md's stated defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Initial:    100 * time.Millisecond,
		Max:        10 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
		MaxRetries: 3,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	base := float64(p.Initial) * math.Pow(p.Multiplier, float64(attempt))
	if base > float64(p.Max) {
		base = float64(p.Max)
	}
	jitterRange := base * p.Jitter
	delta := (rand.Float64()*2 - 1) * jitterRange
	d := base + delta
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// backOff adapts RetryPolicy to cenkalti/backoff/v4's BackOff interface,
// the same dependency httprange uses for its own retry schedule, here
// implementing spec.md's exact jittered formula instead of the library's
// built-in randomization.
type backOff struct {
	policy  RetryPolicy
	attempt int
}

func newBackOff(policy RetryPolicy) *backOff { return &backOff{policy: policy} }

func (b *backOff) NextBackOff() time.Duration {
	if b.attempt >= b.policy.MaxRetries {
		return backoff.Stop
	}
	d := b.policy.delay(b.attempt)
	b.attempt++
	return d
}

func (b *backOff) Reset() { b.attempt = 0 }
