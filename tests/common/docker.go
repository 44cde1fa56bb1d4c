// Package common provides shared test infrastructure
package common

import (
	"os"
	"testing"
)

// DockerEnv enables container-backed tests when set to "true".
const DockerEnv = "NAVDASH_TEST_DOCKER"

// RequireDocker skips the test unless container-backed tests are enabled.
func RequireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv(DockerEnv) != "true" {
		t.Skipf("set %s=true to run container-backed tests", DockerEnv)
	}
}
