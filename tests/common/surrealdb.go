package common

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	navcommon "github.com/bobmcallan/navdash/internal/common"
)

const (
	surrealUser      = "navdash"
	surrealPass      = "navdash"
	surrealNamespace = "navdash_test"
)

var (
	surrealOnce      sync.Once
	surrealContainer *SurrealDBContainer
	surrealError     error
)

// SurrealDBContainer is the shared SurrealDB instance backing the
// daily_record store tests.
type SurrealDBContainer struct {
	*backendContainer
}

// StartSurrealDB starts the SurrealDB container once per test process.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()
	RequireDocker(t)

	surrealOnce.Do(func() {
		c, err := startBackend("surrealdb", "8000/tcp", testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", surrealUser, "--pass", surrealPass},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("8000/tcp"),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		})
		if err != nil {
			surrealError = err
			return
		}
		surrealContainer = &SurrealDBContainer{backendContainer: c}
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}
	return surrealContainer
}

// Address returns the WebSocket RPC address.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}

// StoreConfig returns store settings pointing at a database unique to t, so
// each test starts with an empty daily_record table.
func (c *SurrealDBContainer) StoreConfig(t *testing.T) navcommon.SurrealDBConfig {
	// SurrealDB rejects "/" in database names, which subtests produce.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return navcommon.SurrealDBConfig{
		Address:   c.Address(),
		Username:  surrealUser,
		Password:  surrealPass,
		Namespace: surrealNamespace,
		Database:  fmt.Sprintf("t_%s_%d", name, time.Now().UnixNano()%100000),
	}
}

// Cleanup terminates the container.
func (c *SurrealDBContainer) Cleanup() {
	if c != nil {
		c.terminate()
	}
}
