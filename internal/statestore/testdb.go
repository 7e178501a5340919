package statestore

import "testing"

// OpenTestDB opens an in-memory store with all migrations applied. The
// store is closed when the test finishes.
func OpenTestDB(t testing.TB) *Store {
	t.Helper()
	s, err := Open(MemoryDSN)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
