package kvstore

import "testing"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreGetSet(t *testing.T) {
	s := newTestStore(t)

	t.Run("MissingKey", func(t *testing.T) {
		val, ok, err := s.GetItem("nope")
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if ok {
			t.Errorf("Expected ok=false for missing key, got value '%s'", val)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		if err := s.SetItem("adaptive:lastrun:u1", "2026-08-31T10:00:00Z"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		val, ok, err := s.GetItem("adaptive:lastrun:u1")
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if !ok {
			t.Fatal("Expected key to exist")
		}
		if val != "2026-08-31T10:00:00Z" {
			t.Errorf("Expected stored value back, got '%s'", val)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := s.SetItem("counter", "1"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		if err := s.SetItem("counter", "2"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		val, ok, err := s.GetItem("counter")
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if !ok || val != "2" {
			t.Errorf("Expected '2' after overwrite, got '%s' (ok=%v)", val, ok)
		}
	})
}

func TestStorePersistsToDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := s.SetItem("k", "v"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	val, ok, err := reopened.GetItem("k")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if !ok || val != "v" {
		t.Errorf("Expected value to survive a reopen, got '%s' (ok=%v)", val, ok)
	}
}
