package testsupport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-course-catalog/catalog"
	"github.com/goliatone/go-course-catalog/events"
	"github.com/goliatone/go-course-catalog/identity"
)

// GatewayFake is an in-memory cache gateway that records every call and can
// be scripted to fail per operation.
type GatewayFake struct {
	mu   sync.Mutex
	data map[string][]byte

	GetErr    error
	SetErr    error
	DeleteErr error
	PrefixErr error

	Gets            []string
	Sets            []string
	Deletes         []string
	DeletedPrefixes []string
}

// NewGatewayFake returns an empty fake.
func NewGatewayFake() *GatewayFake {
	return &GatewayFake{data: map[string][]byte{}}
}

func (g *GatewayFake) Get(_ context.Context, key string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Gets = append(g.Gets, key)
	if g.GetErr != nil {
		return nil, g.GetErr
	}
	val, ok := g.data[key]
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (g *GatewayFake) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sets = append(g.Sets, key)
	if g.SetErr != nil {
		return g.SetErr
	}
	g.data[key] = value
	return nil
}

func (g *GatewayFake) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Deletes = append(g.Deletes, key)
	if g.DeleteErr != nil {
		return g.DeleteErr
	}
	delete(g.data, key)
	return nil
}

func (g *GatewayFake) DeletePrefix(_ context.Context, prefix string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.DeletedPrefixes = append(g.DeletedPrefixes, prefix)
	if g.PrefixErr != nil {
		return g.PrefixErr
	}
	for key := range g.data {
		if strings.HasPrefix(key, prefix) {
			delete(g.data, key)
		}
	}
	return nil
}

// Has reports whether a key is currently cached.
func (g *GatewayFake) Has(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.data[key]
	return ok
}

// Len returns the number of cached entries.
func (g *GatewayFake) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.data)
}

// DeletedKey reports whether key appeared in any Delete call.
func (g *GatewayFake) DeletedKey(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range g.Deletes {
		if k == key {
			return true
		}
	}
	return false
}

// DeletedPrefix reports whether prefix appeared in any DeletePrefix call.
func (g *GatewayFake) DeletedPrefix(prefix string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.DeletedPrefixes {
		if p == prefix {
			return true
		}
	}
	return false
}

// RecordingPublisher captures every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Err    error
	Topics []string
	Events []events.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, topic string, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Topics = append(p.Topics, topic)
	p.Events = append(p.Events, event)
	return nil
}

// IdentityStub resolves users from a fixed map and returns a not-found
// error for everyone else.
type IdentityStub struct {
	Users map[string]*identity.UserRecord
}

func (s *IdentityStub) GetUser(_ context.Context, id string) (*identity.UserRecord, error) {
	if user, ok := s.Users[id]; ok {
		return user, nil
	}
	return nil, catalog.NewNotFound("user", id)
}
