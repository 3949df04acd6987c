package sqlite

import (
	"testing"

	"health-companion-api/internal/store/storetest"
)

func TestStore(t *testing.T) {
	st, err := New("file:store_suite?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(st.Close)
	storetest.Run(t, st)
}

func TestSchemaIsIdempotent(t *testing.T) {
	dsn := "file:store_reopen?mode=memory&cache=shared"
	first, err := New(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer first.Close()
	second, err := New(dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	second.Close()
}
