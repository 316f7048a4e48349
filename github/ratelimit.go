package github

import (
	"math/rand"
	"net/http"
	"strconv"
	"time"

	gh "github.com/google/go-github/v61/github"
)

// Policy controls API call behavior (wait/retry/jitter).
type Policy struct {
	EventualComplete bool          // wait through rate limit resets until completion
	MaxWaitReset     time.Duration // cap per wait for rate reset; 0 means no cap
	SleepMin         time.Duration // min jitter between paginated calls
	SleepMax         time.Duration // max jitter between paginated calls
	RetriesNonRate   int           // retries for transient non-rate-limit errors
}

// DefaultPolicy waits at most two minutes per rate-limit reset and retries
// transient errors once.
func DefaultPolicy() Policy {
	return Policy{
		MaxWaitReset:   2 * time.Minute,
		RetriesNonRate: 1,
	}
}

var sleep = time.Sleep

func (p Policy) sleepJitter() {
	if p.SleepMax <= 0 {
		return
	}
	min, max := p.SleepMin, p.SleepMax
	if max < min {
		max = min
	}
	var extra time.Duration
	if delta := max - min; delta > 0 {
		extra = time.Duration(rand.Int63n(int64(delta)))
	}
	sleep(min + extra)
}

// waitIfRateLimited sleeps for the duration indicated by Retry-After or
// Rate.Reset. It reports whether the caller should retry.
func (p Policy) waitIfRateLimited(resp *gh.Response) bool {
	if !isRateLimitResponse(resp) {
		return false
	}
	if v := resp.Response.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			p.waitWithCap(time.Duration(secs) * time.Second)
			return true
		}
	}
	if !resp.Rate.Reset.Time.IsZero() {
		wait := time.Until(resp.Rate.Reset.Time)
		if wait <= 0 {
			wait = 5 * time.Second
		}
		p.waitWithCap(wait)
		return true
	}
	return false
}

func (p Policy) waitWithCap(wait time.Duration) {
	capDur := p.MaxWaitReset
	if !p.EventualComplete && capDur == 0 {
		capDur = 2 * time.Minute
	}
	if capDur > 0 && wait > capDur {
		wait = capDur
	}
	sleep(wait)
}

func isRateLimitResponse(resp *gh.Response) bool {
	if resp == nil || resp.Response == nil {
		return false
	}
	switch resp.Response.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return resp.Response.Header.Get("X-RateLimit-Remaining") == "0"
	}
	return false
}

// isSkippableClientError reports client-side errors that retrying won't fix.
func isSkippableClientError(resp *gh.Response) bool {
	if resp == nil || resp.Response == nil {
		return false
	}
	switch resp.Response.StatusCode {
	case http.StatusForbidden:
		return !isRateLimitResponse(resp)
	case http.StatusNotFound, http.StatusGone, http.StatusUnprocessableEntity:
		return true
	}
	return false
}
