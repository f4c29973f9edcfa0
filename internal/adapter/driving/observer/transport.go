// Package observer captures the bearer token a host sends on its own outgoing
// requests, without altering those requests.
package observer

import (
	"net/http"
	"sync/atomic"
)

// NetworkObserver receives the Authorization header of an outgoing request.
// Implementations must return quickly; the host request waits on the call.
type NetworkObserver interface {
	OnOutgoingAuthHeader(header string)
}

// ObserverFunc adapts a function to NetworkObserver.
type ObserverFunc func(header string)

// OnOutgoingAuthHeader calls f(header).
func (f ObserverFunc) OnOutgoingAuthHeader(header string) { f(header) }

// Transport is an http.RoundTripper decorator that hands the first non-empty
// Authorization header it sees to its observer, then stops looking until it is
// re-armed. Requests and responses pass through untouched.
type Transport struct {
	base     http.RoundTripper
	observer NetworkObserver
	armed    atomic.Bool
}

// NewTransport wraps base (http.DefaultTransport when nil). The returned
// transport starts armed.
func NewTransport(base http.RoundTripper, observer NetworkObserver) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{base: base, observer: observer}
	t.armed.Store(true)
	return t
}

// RoundTrip forwards req to the base transport, observing it first if armed.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.armed.Load() {
		if header := req.Header.Get("Authorization"); header != "" && t.armed.CompareAndSwap(true, false) {
			t.observer.OnOutgoingAuthHeader(header)
		}
	}
	return t.base.RoundTrip(req)
}

// Arm re-enables capture of the next authenticated request.
func (t *Transport) Arm() {
	t.armed.Store(true)
}

// Armed reports whether the next authenticated request will be captured.
func (t *Transport) Armed() bool {
	return t.armed.Load()
}

// WrapClient returns a shallow copy of client whose transport is observed.
// This lets a Go host feed its own authenticated traffic to the observer.
func WrapClient(client *http.Client, observer NetworkObserver) (*http.Client, *Transport) {
	if client == nil {
		client = http.DefaultClient
	}
	t := NewTransport(client.Transport, observer)
	wrapped := *client
	wrapped.Transport = t
	return &wrapped, t
}
