package bridge

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"twin/internal/config"
)

const shutdownGrace = 5 * time.Second

// Serve runs the bridge until ctx is done or a listener fails. The loopback
// domain gets one plaintext listener with every route; any other domain gets
// TLS listeners for the agent and API sides, and either failing stops both.
func Serve(ctx context.Context, cfg config.Bridge, s *Server) error {
	if cfg.Local() {
		addr := net.JoinHostPort("localhost", strconv.Itoa(cfg.Port))
		log.Info("Serving bridge", "addr", addr, "tls", false)
		return run(ctx, &http.Server{Addr: addr, Handler: s.Handler()}, "", "")
	}

	for _, p := range []string{cfg.CertPath, cfg.KeyPath} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("tls file %s: %w", p, err)
		}
	}

	agentSrv := &http.Server{Addr: ":" + strconv.Itoa(cfg.Port), Handler: s.AgentHandler()}
	apiSrv := &http.Server{Addr: ":" + strconv.Itoa(cfg.APIPort), Handler: s.APIHandler()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Serving agent endpoint", "domain", cfg.Domain, "addr", agentSrv.Addr)
		return run(gctx, agentSrv, cfg.CertPath, cfg.KeyPath)
	})
	g.Go(func() error {
		log.Info("Serving API", "domain", cfg.Domain, "addr", apiSrv.Addr)
		return run(gctx, apiSrv, cfg.CertPath, cfg.KeyPath)
	})
	return g.Wait()
}

// run serves srv until ctx is done, then shuts it down gracefully. An empty
// cert means plaintext.
func run(ctx context.Context, srv *http.Server, cert, key string) error {
	errc := make(chan error, 1)
	go func() {
		var err error
		if cert == "" {
			err = srv.ListenAndServe()
		} else {
			err = srv.ListenAndServeTLS(cert, key)
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
	}
	return nil
}
