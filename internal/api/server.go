// Package api serves the artifact tree over HTTP: DICOMweb-shaped retrieval
// routes, a multipart ingest route, and the operational endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dicomstatic/internal/dicomfile"
	"dicomstatic/internal/wado"
	"dicomstatic/pkg/dicomweb"
)

// ParseFunc turns an uploaded payload into a parsed object.
type ParseFunc func([]byte) (dicomweb.Object, error)

// Server hosts the HTTP API over one archive and retriever pair.
type Server struct {
	addr      string
	archive   *wado.Archive
	retriever *wado.Retriever
	logger    *zap.Logger
	gatherer  prometheus.Gatherer
	parse     ParseFunc
	router    *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger injects the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer selects the metrics registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithParser replaces the payload parser used by the ingest route.
func WithParser(p ParseFunc) Option {
	return func(s *Server) {
		if p != nil {
			s.parse = p
		}
	}
}

// New assembles the router. addr is the listen address handed to Run.
func New(addr string, archive *wado.Archive, retriever *wado.Retriever, opts ...Option) *Server {
	s := &Server{
		addr:      addr,
		archive:   archive,
		retriever: retriever,
		logger:    zap.NewNop(),
		gatherer:  prometheus.DefaultGatherer,
		parse: func(data []byte) (dicomweb.Object, error) {
			return dicomfile.ParseBytes(data)
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))
	s.router = router
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	s.router.POST("/instances", s.storeInstance)

	studies := s.router.Group("/studies")
	studies.GET("", s.listStudies)
	studies.GET("/:study/metadata", s.studyMetadata)
	studies.GET("/:study/thumbnail", s.studyThumbnail)
	studies.GET("/:study/series", s.listSeries)
	studies.GET("/:study/series/:series/metadata", s.seriesMetadata)
	studies.GET("/:study/series/:series/thumbnail", s.seriesThumbnail)
	studies.GET("/:study/series/:series/instances", s.listInstances)
	studies.GET("/:study/series/:series/instances/:instance/metadata", s.instanceMetadata)
	studies.GET("/:study/series/:series/instances/:instance/frames/:frame", s.instanceFrame)
	studies.GET("/:study/series/:series/instances/:instance/pixel-data", s.instancePixelData)
	studies.GET("/:study/series/:series/instances/:instance/rendered", s.instanceRendered)
	studies.GET("/:study/series/:series/instances/:instance/thumbnail", s.instanceThumbnail)
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is canceled, then drains connections and returns.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("http server listening", zap.String("addr", s.addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", s.addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
