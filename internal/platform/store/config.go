package store

import "time"

// Config selects and configures backends
type Config struct {
	AppName string // postgres application_name and clickhouse client name

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// the first ping is retried with exponential backoff while the server
	// comes up
	ConnectRetries int           // 6 when zero
	PingTimeout    time.Duration // 3s when zero
}

// CHConfig configures clickhouse
type CHConfig struct {
	Enabled   bool
	URL       string
	ClientTag string // process role in system.query_log, e.g. "api"
}

func (c PGConfig) retries() uint64 {
	if c.ConnectRetries <= 0 {
		return 6
	}
	return uint64(c.ConnectRetries)
}

func (c PGConfig) pingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 3 * time.Second
	}
	return c.PingTimeout
}
