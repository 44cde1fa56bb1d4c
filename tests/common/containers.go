package common

import (
	"context"
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// testLabel marks every container started by the navdash test suites.
const testLabel = "org.navdash.test"

// backendContainer is a started record-store container and its mapped port.
type backendContainer struct {
	container testcontainers.Container
	host      string
	port      string
}

// startBackend starts req labelled with backend and resolves the mapped
// address of port. The container is terminated on any failure.
func startBackend(backend, port string, req testcontainers.ContainerRequest) (*backendContainer, error) {
	ctx := context.Background()

	if req.Labels == nil {
		req.Labels = map[string]string{}
	}
	req.Labels[testLabel] = backend

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s container: %w", backend, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s host: %w", backend, err)
	}

	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s port: %w", backend, err)
	}

	return &backendContainer{container: container, host: host, port: mapped.Port()}, nil
}

func (c *backendContainer) terminate() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}
