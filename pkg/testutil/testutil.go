// Package testutil provides shared helpers for package tests: an
// in-memory persistence gateway and a canned two-person roster.
package testutil

import (
	"testing"

	"github.com/seojinp/moyeora/pkg/gateway"
	"github.com/seojinp/moyeora/pkg/roster"
	"github.com/seojinp/moyeora/pkg/storage"
)

// NewGateway returns a gateway over an in-memory badger store, closed when
// the test finishes.
func NewGateway(t *testing.T) *gateway.Gateway {
	t.Helper()

	store, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return gateway.New(store)
}

// NewRoster returns the roster used throughout the tests: alice and bob.
func NewRoster(t *testing.T) *roster.Roster {
	t.Helper()

	r, err := roster.Parse("alice:1001:Alice,bob:1002:Bob")
	if err != nil {
		t.Fatalf("Failed to parse test roster: %v", err)
	}
	return r
}
