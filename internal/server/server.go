/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package server exposes the classifier over HTTP.
package server

import (
	"context"
	"image"
	"net/http"
	"time"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mpromonet/tflite-classifier/internal/classify"
	"github.com/mpromonet/tflite-classifier/internal/log"
)

// Classifier turns an image into a prediction.
type Classifier interface {
	Do(ctx context.Context, img image.Image) (*classify.Prediction, error)
	Labels() *classify.Labels
}

// Camera captures a single frame.
type Camera interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Config holds the HTTP settings.
type Config struct {
	Listen    string
	StaticDir string
	Timeout   time.Duration
	MaxUpload int64
}

// Server routes HTTP requests to a Classifier.
type Server struct {
	cfg        Config
	classifier Classifier
	camera     Camera
	log        *logrus.Logger
	engine     *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithCamera enables POST /camera.
func WithCamera(camera Camera) Option {
	return func(s *Server) {
		s.camera = camera
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) {
		s.log = logger
	}
}

// New builds the router.
func New(cfg Config, classifier Classifier, opts ...Option) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = 10 << 20
	}
	s := &Server{cfg: cfg, classifier: classifier}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.Discard()
	}

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUpload
	engine.Use(gin.Recovery(), requestID(), accessLog(s.log))
	if cfg.StaticDir != "" {
		engine.Use(static.Serve("/", static.LocalFile(cfg.StaticDir, false)))
	}

	engine.GET("/health", s.health)
	engine.GET("/labels", s.labels)
	engine.POST("/classify", s.classifyUpload)
	engine.POST("/runmodel", s.classifyBody)
	engine.POST("/camera", s.classifyCamera)

	s.engine = engine
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Timeout,
		WriteTimeout: s.cfg.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("listen", s.cfg.Listen).Info("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
