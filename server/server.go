// Package server provides an HTTP REST server that tokenizes Sheet text and
// keeps incremental editing sessions.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/dekarrin/sheetlex/server/api"
	"github.com/dekarrin/sheetlex/server/dao"
	"github.com/dekarrin/sheetlex/server/sheets"
	"github.com/rs/zerolog"
)

// server:
//  - GET    /info            - version info on the server, engine and grammar.
//  - GET    /grammar         - every state and rule of the grammar.
//  - POST   /highlight       - tokenize a list of lines (JSON).
//  - POST   /tokens          - tokenize a whole text (text/plain).
//  - POST   /sessions        - create an editing session from a text.
//  - GET    /sessions        - summary of all sessions.
//  - GET    /sessions/{id}   - a session with the tokens of every line.
//  - PATCH  /sessions/{id}   - replace a range of lines of a session.
//  - DELETE /sessions/{id}   - delete a session.

// Server is an HTTP REST server that tokenizes Sheet text. The zero-value of a
// Server should not be used directly; call New() to get one ready for use.
type Server struct {
	cfg     Config
	db      dao.Store
	log     zerolog.Logger
	router  http.Handler
	httpSrv *http.Server
}

// New creates a new Server from the given config. Unset values in cfg are set
// to their defaults before it is validated. The store that cfg.DB names is
// connected to immediately.
func New(cfg Config, log zerolog.Logger) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect DB: %w", err)
	}

	svc := &sheets.Service{
		DB:       db,
		Lexer:    lex.New(nil).WithLogger(log),
		MaxLines: cfg.MaxLines,
	}

	a := api.API{
		Backend:    svc,
		ErrorDelay: cfg.SlowDelay(),
	}

	return &Server{
		cfg:    cfg,
		db:     db,
		log:    log,
		router: newRouter(a, log, cfg.MaxBodyBytes),
	}, nil
}

// Handler returns the root handler of the server, for use in tests or when
// serving through some other http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Config returns the config the server is using, with defaults filled in.
func (s *Server) Config() Config {
	return s.cfg
}

// ServeForever begins listening on the configured listen address for HTTP
// REST client requests. It returns only when the server stops; if that is
// because Shutdown was called, the returned error is nil.
func (s *Server) ServeForever() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("address", s.cfg.ListenAddress).Str("db", s.cfg.DB.String()).Msg("Listening")
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops a server started with ServeForever.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Close closes the store of the server. It should be called after the server
// has stopped serving.
func (s *Server) Close() error {
	return s.db.Close()
}
