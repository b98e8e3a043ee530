package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"time"

	"shipscan/internal/platform/config"
	"shipscan/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns the chi mux and the listener. It runs under a supervisor
type Server struct {
	mux   *chi.Mux
	srv   *stdhttp.Server
	grace time.Duration
}

// NewServer reads ADDR (or PORT, default 4000), READ_HEADER_TIMEOUT and
// SHUTDOWN_GRACE from cfg
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("ADDR", "")
	if addr == "" {
		addr = ":" + cfg.MayString("PORT", "4000")
	}
	m := chi.NewRouter()
	return &Server{
		mux: m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: cfg.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		},
		grace: cfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
	}
}

// Router mounts onto the server mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Handler is the root handler, for tests that skip the listener
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Addr is the configured listen address
func (s *Server) Addr() string { return s.srv.Addr }

// Serve listens until ctx ends, then drains in-flight requests for the
// shutdown grace period
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("http")
	log.Info().Str("addr", ln.Addr().String()).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
		return err
	}
	<-errc
	log.Info().Msg("http stopped")
	return ctx.Err()
}

// String names the server in supervisor events
func (s *Server) String() string { return "http-server " + s.srv.Addr }
