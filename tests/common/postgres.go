package common

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresOnce      sync.Once
	postgresContainer *PostgresContainer
	postgresError     error
)

// PostgresContainer is the shared Postgres instance backing the
// daily_records store tests.
type PostgresContainer struct {
	*backendContainer
}

// StartPostgres starts the Postgres container once per test process.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	RequireDocker(t)

	postgresOnce.Do(func() {
		c, err := startBackend("postgres", "5432/tcp", testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "navdash",
				"POSTGRES_PASSWORD": "navdash",
				"POSTGRES_DB":       "navdash",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60 * time.Second),
		})
		if err != nil {
			postgresError = err
			return
		}
		postgresContainer = &PostgresContainer{backendContainer: c}
	})

	if postgresError != nil {
		t.Fatalf("Postgres container failed: %v", postgresError)
	}
	return postgresContainer
}

// DSN returns a connection string for the container's database.
func (c *PostgresContainer) DSN() string {
	return fmt.Sprintf("postgres://navdash:navdash@%s:%s/navdash?sslmode=disable", c.host, c.port)
}

// Cleanup terminates the container.
func (c *PostgresContainer) Cleanup() {
	if c != nil {
		c.terminate()
	}
}
