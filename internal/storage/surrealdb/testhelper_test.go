package surrealdb

import (
	"context"
	"testing"

	"github.com/bobmcallan/navdash/internal/common"
	tcommon "github.com/bobmcallan/navdash/tests/common"
)

// testStore connects to the shared SurrealDB container through Connect, so
// the daily_record table is defined the same way as in production. Each test
// gets its own database.
func testStore(t *testing.T) *Store {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)
	store, err := Connect(context.Background(), testLogger(), sc.StoreConfig(t))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
