package network

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// ErrNoProxies is returned when every configured proxy is currently banned,
// or none were configured at all.
var ErrNoProxies = errors.New("no proxies available")

// Rotator hands out proxies round-robin. A proxy the marketplace answers
// with 403 or 429 sits out for the ban duration, then rejoins the rotation.
type Rotator struct {
	proxies     []*url.URL
	banDuration time.Duration
	bannedUntil map[string]time.Time
	index       int
	mu          sync.Mutex
}

func NewRotator(raw []string, banDuration time.Duration) (*Rotator, error) {
	rotator := &Rotator{
		banDuration: banDuration,
		bannedUntil: map[string]time.Time{},
	}

	for _, proxy := range raw {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", proxy, err)
		}
		rotator.proxies = append(rotator.proxies, u)
	}

	return rotator, nil
}

// Next returns the next usable proxy. One full scan of the rotation is
// enough: every proxy skipped on this pass is banned.
func (r *Rotator) Next() (*url.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tries := 0; tries < len(r.proxies); tries++ {
		proxy := r.proxies[r.index]
		r.index = (r.index + 1) % len(r.proxies)

		if !r.banned(proxy) {
			return proxy, nil
		}
	}
	return nil, ErrNoProxies
}

// Report feeds a response status back into the rotation.
func (r *Rotator) Report(proxy *url.URL, status int) {
	if proxy == nil {
		return
	}
	if status != 403 && status != 429 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bannedUntil[proxy.String()] = time.Now().Add(r.banDuration)
}

func (r *Rotator) banned(proxy *url.URL) bool {
	until, ok := r.bannedUntil[proxy.String()]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(r.bannedUntil, proxy.String())
		return false
	}
	return true
}
