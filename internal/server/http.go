package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/justsurfingit/jobboard/internal/config"
)

// HTTPServer owns the listening socket for the API.
type HTTPServer struct {
	addr  string
	srv   *http.Server
	drain time.Duration
}

// NewHTTPServer sizes the write timeout for the slowest route, which waits
// on the extraction model.
func NewHTTPServer(cfg config.Config, router *gin.Engine) *HTTPServer {
	return &HTTPServer{
		addr: cfg.HTTPAddr,
		srv: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      90 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		drain: 15 * time.Second,
	}
}

// Listen binds the configured address. Callers serve on the result so a
// port clash surfaces before startup completes.
func (s *HTTPServer) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return ln, nil
}

// Serve handles connections on ln until ctx ends, then waits up to the
// drain period for in-flight requests.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), s.drain)
		defer cancel()
		if err := s.srv.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Run is Listen followed by Serve.
func (s *HTTPServer) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
