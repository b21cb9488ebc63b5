package rate

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type bucket struct {
	capacity int
	tokens   float64
	last     time.Time
}

type cacheEntry struct {
	status  int
	header  http.Header
	body    []byte
	expires time.Time
}

// Guard throttles requests to one printer and caches its last good answer.
type Guard struct {
	printer string
	policy  Policy
	now     func() time.Time
	metrics *guardMetrics

	mu sync.Mutex
	// guarded by mu
	bucket    *bucket
	cooldown  time.Time
	cache     map[string]cacheEntry
	fetchedAt time.Time
}

func New(printer string, policy Policy) *Guard {
	g := &Guard{
		printer: printer,
		policy:  policy,
		now:     time.Now,
		metrics: newGuardMetrics(printer),
		cache:   make(map[string]cacheEntry),
	}
	if policy.MaxPerMinute > 0 {
		g.bucket = &bucket{capacity: policy.MaxPerMinute, tokens: float64(policy.MaxPerMinute)}
	}
	return g
}

// Wrap returns a copy of base whose transport goes through the guard.
func (g *Guard) Wrap(base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client.Transport = &roundTripper{base: transport, guard: g}
	return &client
}

type roundTripper struct {
	base  http.RoundTripper
	guard *Guard
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	decision := rt.guard.ShouldCall()
	if !decision.Allowed {
		if cached := rt.guard.cachedResponse(req); cached != nil {
			rt.guard.metrics.cacheHits.Inc()
			return cached, nil
		}
		rt.guard.metrics.blocked.Inc()
		return nil, RateLimitError{
			Printer: rt.guard.printer,
			Reason:  decision.Reason,
			RetryAt: decision.RetryAt,
		}
	}

	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	rt.guard.RecordResponse(resp.StatusCode, resp.Header)
	return rt.guard.maybeCacheResponse(req, resp)
}

// LastFetched is when the printer last answered 2xx over the network.
// Cached responses do not move it.
func (g *Guard) LastFetched() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetchedAt
}

// ShouldCall consumes a token when the printer may be contacted now.
func (g *Guard) ShouldCall() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.cooldown.IsZero() && now.Before(g.cooldown) {
		return Decision{Allowed: false, Reason: "cooldown", RetryAt: g.cooldown}
	}
	if g.bucket == nil {
		return Decision{Allowed: true}
	}
	if !consumeToken(g.bucket, now, time.Minute) {
		retryAt := g.bucket.last.Add(time.Minute / time.Duration(g.bucket.capacity))
		return Decision{Allowed: false, Reason: "budget", RetryAt: retryAt}
	}
	g.metrics.tokens.Set(g.bucket.tokens)
	return Decision{Allowed: true}
}

// RecordResponse starts a cooldown when a busy printer sends Retry-After.
func (g *Guard) RecordResponse(status int, headers http.Header) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.metrics.lastStatus.Set(float64(status))
	if status/100 == 2 {
		g.fetchedAt = g.now()
	}
	if status != http.StatusTooManyRequests && status != http.StatusServiceUnavailable {
		return
	}
	seconds, err := strconv.Atoi(headers.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return
	}
	g.cooldown = g.now().Add(time.Duration(seconds) * time.Second)
	g.metrics.retryAfter.Set(float64(seconds))
}

func (g *Guard) cachedResponse(req *http.Request) *http.Response {
	if g.policy.CacheTTL <= 0 || req.Method != http.MethodGet {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.cache[req.URL.String()]
	if !ok || g.now().After(entry.expires) {
		return nil
	}
	resp := cloneResponse(req, entry.status, entry.header, entry.body)
	stored := entry.expires.Add(-g.policy.CacheTTL)
	resp.Header.Set("Age", strconv.Itoa(int(g.now().Sub(stored).Seconds())))
	return resp
}

func (g *Guard) maybeCacheResponse(req *http.Request, resp *http.Response) (*http.Response, error) {
	if g.policy.CacheTTL <= 0 || req.Method != http.MethodGet || resp.StatusCode/100 != 2 {
		return resp, nil
	}
	buf, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	clone := cloneResponse(req, resp.StatusCode, resp.Header, buf)
	g.mu.Lock()
	g.cache[req.URL.String()] = cacheEntry{
		status:  resp.StatusCode,
		header:  clone.Header.Clone(),
		body:    buf,
		expires: g.now().Add(g.policy.CacheTTL),
	}
	g.mu.Unlock()
	return clone, nil
}

func consumeToken(b *bucket, now time.Time, window time.Duration) bool {
	if b.last.IsZero() {
		b.last = now
	}
	elapsed := now.Sub(b.last).Seconds()
	refillRate := float64(b.capacity) / window.Seconds()
	b.tokens = min(float64(b.capacity), b.tokens+elapsed*refillRate)
	b.last = now
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func cloneResponse(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:        header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
