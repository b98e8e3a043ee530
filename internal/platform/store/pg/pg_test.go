package pg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shipscan/internal/platform/testkit"
)

const dsn = "postgres://scan:scan@db:5432/shipscan?sslmode=disable"

func TestOpen_BadURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://bad"}, nil); err == nil {
		t.Fatal("want parse error")
	}
}

func TestOpen_PoolError(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("boom")
	})
	_, err := Open(context.Background(), Config{URL: dsn}, nil)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v", err)
	}
}

func TestOpen_AppliesConfig(t *testing.T) {
	testkit.Serial(t)

	var seen *pgxpool.Config
	testkit.Swap(t, &newPool, func(_ context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = pc
		return &pgxpool.Pool{}, nil
	})

	cfg := Config{URL: dsn, MaxConns: 7, MinConns: 2, HealthCheck: 15 * time.Second, SlowMs: 250, AppName: "shipscan-test"}
	p, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if seen.MaxConns != 7 || seen.MinConns != 2 || seen.HealthCheckPeriod != 15*time.Second {
		t.Fatalf("pool config = %+v", seen)
	}
	if seen.ConnConfig.RuntimeParams["application_name"] != "shipscan-test" {
		t.Fatalf("runtime params = %v", seen.ConnConfig.RuntimeParams)
	}
	if p.SlowMs != 250 || p.Pool == nil {
		t.Fatalf("pg = %+v", p)
	}
}

func TestClose_NilSafe(t *testing.T) {
	var p *PG
	p.Close()
	(&PG{}).Close()
}
