// Package dao provides data access objects for use in the sheetlex server.
package dao

import (
	"context"
	"time"

	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Sessions() SessionRepository
	Close() error
}

// SessionRepository persists editing sessions.
type SessionRepository interface {
	// Create creates a new Session. All attributes except for auto-generated
	// fields are taken from the provided Session.
	Create(ctx context.Context, s Session) (Session, error)
	GetAll(ctx context.Context) ([]Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)

	// Update replaces the document of the session with the given ID. Modified
	// is set to the current time.
	Update(ctx context.Context, id uuid.UUID, s Session) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) (Session, error)
	Close() error
}

// Session is a document being edited through the server. Repositories give
// every caller its own copy of Doc.
type Session struct {
	ID  uuid.UUID
	Doc *lex.Document

	// Grammar is the grammar revision the document was last tokenized with.
	Grammar string

	Created  time.Time
	Modified time.Time
}
