// Package repository holds the mode resolution shared by every entity
// repository: each operation targets either local device storage or the
// remote store, decided per call from the session identity.
package repository

import "github.com/AkshayAD/Cook-Commander/internal/session"

// Resolver decides whether an operation runs offline. It is a pure
// function of two booleans: whether a remote store is configured at
// deploy time, and whether the caller has an authenticated identity.
//
// Callers resolve per operation and never cache the answer, because a
// session can transition online to offline within one process lifetime
// (sign-out).
type Resolver struct {
	remoteConfigured bool
}

// NewResolver builds a Resolver for this deployment.
func NewResolver(remoteConfigured bool) *Resolver {
	return &Resolver{remoteConfigured: remoteConfigured}
}

// Offline reports whether operations for the given session must target
// local device storage.
func (r *Resolver) Offline(s session.Session) bool {
	return !r.remoteConfigured || s.IsLocal()
}
