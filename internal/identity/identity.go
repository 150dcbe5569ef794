// Package identity holds the signed-in user and broadcasts sign-in and
// sign-out events to interested components.
package identity

import (
	"sync"
	"time"

	"ketotrack/internal/domain"
)

// EventType distinguishes sign-in from sign-out.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event is an authentication state change. UID is the affected user.
type Event struct {
	Type      EventType
	UID       string
	Timestamp time.Time
}

// Subscriber is a channel that receives events
type Subscriber chan Event

// Provider tracks the current user and fans out state changes.
type Provider struct {
	mu          sync.RWMutex
	uid         string
	subscribers map[Subscriber]struct{}
}

var _ domain.Identity = (*Provider)(nil)

// NewProvider creates a provider with nobody signed in.
func NewProvider() *Provider {
	return &Provider{subscribers: make(map[Subscriber]struct{})}
}

// CurrentUser returns the signed-in user id.
func (p *Provider) CurrentUser() (string, bool) {
	if p == nil {
		return "", false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.uid, p.uid != ""
}

// SignIn makes uid the current user and publishes EventSignedIn. Signing in
// the already-current user publishes again so listeners can re-run
// idempotent work.
func (p *Provider) SignIn(uid string) {
	p.mu.Lock()
	p.uid = uid
	p.mu.Unlock()
	p.publish(Event{Type: EventSignedIn, UID: uid, Timestamp: time.Now()})
}

// SignOut clears the current user. It is a no-op when nobody is signed in.
func (p *Provider) SignOut() {
	p.mu.Lock()
	uid := p.uid
	p.uid = ""
	p.mu.Unlock()
	if uid == "" {
		return
	}
	p.publish(Event{Type: EventSignedOut, UID: uid, Timestamp: time.Now()})
}

// Subscribe creates a new subscription and returns a channel
func (p *Provider) Subscribe() Subscriber {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := make(Subscriber, 16)
	p.subscribers[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (p *Provider) Unsubscribe(sub Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.subscribers[sub]; ok {
		delete(p.subscribers, sub)
		close(sub)
	}
}

func (p *Provider) publish(ev Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for sub := range p.subscribers {
		select {
		case sub <- ev:
		default:
			// Subscriber is full, skip
		}
	}
}
