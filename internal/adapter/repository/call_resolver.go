package repository

import (
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/cache"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// IdentityResolver treats the call identifier itself as the contact's number.
// This mirrors how callbacks were keyed historically; contacts end up keyed by
// a normalized CallSid rather than a real phone number.
type IdentityResolver struct{}

var _ repositories.CallResolver = IdentityResolver{}

// Resolve normalizes callSid into a phone key
func (IdentityResolver) Resolve(callSid string) phone.Key {
	return phone.Normalize(callSid)
}

// Observe is a no-op
func (IdentityResolver) Observe(string, string) {}

// DirectoryResolver learns CallSid to counterparty mappings from status
// callbacks and falls back to the identity mapping for unknown calls.
type DirectoryResolver struct {
	entries  *cache.ExpiringMap[string, phone.Key]
	ttl      time.Duration
	fallback IdentityResolver
}

var _ repositories.CallResolver = (*DirectoryResolver)(nil)

// NewDirectoryResolver creates a resolver whose learned mappings expire after ttl
func NewDirectoryResolver(ttl time.Duration) *DirectoryResolver {
	cleanup := ttl / 4
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &DirectoryResolver{
		entries: cache.NewExpiringMap[string, phone.Key](cleanup),
		ttl:     ttl,
	}
}

// Resolve returns the learned counterparty for callSid, or the identity key
func (r *DirectoryResolver) Resolve(callSid string) phone.Key {
	if key, ok := r.entries.Get(callSid); ok {
		return key
	}
	return r.fallback.Resolve(callSid)
}

// Observe remembers the counterparty number for callSid
func (r *DirectoryResolver) Observe(callSid, counterparty string) {
	if callSid == "" || counterparty == "" {
		return
	}
	r.entries.Set(callSid, phone.Normalize(counterparty), r.ttl)
}

// Close stops background cleanup
func (r *DirectoryResolver) Close() {
	r.entries.Close()
}
