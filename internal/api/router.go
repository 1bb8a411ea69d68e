// Package api exposes the intake store and the derived views over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/data/store"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

var logger = util.Component("api")

// Server serves the intake endpoints. Every read goes to the store so a
// write is visible to the next request.
type Server struct {
	store    store.Store
	config   monitor.Config
	location *time.Location
	clock    func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithClock overrides the reference time of derived views.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithLocation sets the time zone days are cut in
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		s.location = loc
	}
}

// NewServer creates a server over st. config is validated and filled with
// defaults.
func NewServer(st store.Store, config monitor.Config, opts ...Option) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Server{
		store:  st,
		config: config,
		clock:  func() time.Time { return util.GetTimeProvider().Now() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.location == nil {
		s.location = util.GetTimeProvider().Location()
	}
	return s, nil
}

// Router returns the bare route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods("GET")
	r.HandleFunc("/intakes", s.listIntakes).Methods("GET")
	r.HandleFunc("/intakes", s.createIntake).Methods("POST")
	r.HandleFunc("/intakes/{subjectId}", s.listSubjectIntakes).Methods("GET")
	r.HandleFunc("/intakes/{id}", s.updateIntake).Methods("PATCH")
	r.HandleFunc("/intakes/{id}", s.deleteIntake).Methods("DELETE")
	r.HandleFunc("/stats", s.stats).Methods("GET")
	r.HandleFunc("/timeline", s.timeline).Methods("GET")
	r.HandleFunc("/timeline/resolve", s.resolve).Methods("GET")

	return r
}

// Handler returns the router wrapped with panic recovery, CORS and access
// logging into the application logger.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return handlers.LoggingHandler(util.LogWriter(util.LevelInfo), h)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening", util.F("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	logger.Error("Recovered from handler panic", util.F("panic", fmt.Sprint(v...)))
}
