//go:build integration_pg

package testkit

import (
	"context"
	"os/exec"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const pgImage = "postgres:16-alpine"

// StartPostgres starts a disposable postgres and returns its DSN. The test is
// skipped when no docker daemon answers
func StartPostgres(t *testing.T) string {
	t.Helper()
	skipWithoutDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		Started: true,
		ContainerRequest: tc.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "shipscan",
				"POSTGRES_PASSWORD": "shipscan",
				"POSTGRES_DB":       "shipscan",
			},
			// the entrypoint restarts the server once after init
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
	})
	tc.CleanupContainer(t, c)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}

	ep, err := c.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		t.Fatalf("postgres endpoint: %v", err)
	}
	return "postgres://shipscan:shipscan@" + ep + "/shipscan?sslmode=disable"
}

func skipWithoutDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("docker not available")
	}
}
