// Package sheets has services for highlighting Sheet text and keeping editing
// sessions, decoupled from the API that accesses them.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/dekarrin/sheetlex/internal/grammar"
	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/dekarrin/sheetlex/internal/render"
	"github.com/dekarrin/sheetlex/internal/version"
	"github.com/dekarrin/sheetlex/server/dao"
	"github.com/dekarrin/sheetlex/server/serr"
	"github.com/google/uuid"
)

// Service is a service for highlighting text and for keeping and editing
// sessions in server persistence.
//
// The zero-value of Service is not ready to be used; assign a valid DAO store
// to DB before attempting to use it. If Lexer is not set, one using the Sheet
// grammar is used.
type Service struct {

	// DB is the persistence store of the service.
	DB dao.Store

	// Lexer tokenizes all text given to the service.
	Lexer *lex.Engine

	// MaxLines is the most lines a single request or session may have. If
	// not set, there is no limit.
	MaxLines int

	// edits of a session are read-modify-write; this keeps two edits of the
	// same session from both reading the old document
	editMtx sync.Mutex
}

func (svc *Service) lexer() *lex.Engine {
	if svc.Lexer == nil {
		svc.Lexer = lex.New(nil)
	}
	return svc.Lexer
}

// Grammar returns the grammar used by the service.
func (svc *Service) Grammar() *grammar.Grammar {
	return svc.lexer().Grammar()
}

func (svc *Service) checkState(state string) (string, error) {
	if state == "" {
		return svc.Grammar().Start(), nil
	}
	if !svc.Grammar().Has(state) {
		return "", serr.New(fmt.Sprintf("no state named %q", state), serr.ErrBadArgument)
	}
	return state, nil
}

func (svc *Service) checkLines(lines []string) error {
	if svc.MaxLines > 0 && len(lines) > svc.MaxLines {
		return serr.New(fmt.Sprintf("%d lines given but at most %d are allowed", len(lines), svc.MaxLines), serr.ErrTooLarge)
	}
	for i := range lines {
		if strings.ContainsAny(lines[i], "\r\n") {
			return serr.New(fmt.Sprintf("line %d contains a line break", i), serr.ErrBadArgument)
		}
	}
	return nil
}

// Highlight tokenizes the given lines in order, starting from state (or the
// start state if state is empty).
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If state is not a state of the
// grammar or a line contains a line break, it will match serr.ErrBadArgument.
// If there are more lines than allowed, it will match serr.ErrTooLarge.
func (svc *Service) Highlight(ctx context.Context, state string, lines []string) ([]render.LineModel, error) {
	state, err := svc.checkState(state)
	if err != nil {
		return nil, err
	}
	if err := svc.checkLines(lines); err != nil {
		return nil, err
	}

	out := make([]render.LineModel, len(lines))
	for i := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var toks []lex.Token
		toks, state = svc.lexer().TokenizeLineAt(state, lines[i], i+1)
		out[i] = render.NewLineModel(i+1, toks, state)
	}

	return out, nil
}

// Tokenize reads all of r and returns every token in it along with the state
// after the last line.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If state is not a state of the
// grammar, it will match serr.ErrBadArgument. If r is an http.MaxBytesReader
// and its limit is reached, it will match serr.ErrTooLarge. If reading fails
// for any other reason, the read error is its cause.
func (svc *Service) Tokenize(ctx context.Context, state string, r io.Reader) ([]lex.Token, string, error) {
	state, err := svc.checkState(state)
	if err != nil {
		return nil, "", err
	}

	stream := svc.lexer().TokenizeFrom(state, r)

	var toks []lex.Token
	for stream.HasNext() {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		if err := stream.Err(); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, "", serr.New(fmt.Sprintf("text is larger than %d bytes", tooLarge.Limit), serr.ErrTooLarge)
			}
			return nil, "", serr.New("could not read text", err)
		}

		tok := stream.Next()
		if svc.MaxLines > 0 && tok.Line() > svc.MaxLines {
			return nil, "", serr.New(fmt.Sprintf("more than %d lines given", svc.MaxLines), serr.ErrTooLarge)
		}
		toks = append(toks, tok)
	}

	return toks, stream.State(), nil
}

// CreateSession creates a new editing session holding the given text. Returns
// the newly-created session as it exists after creation.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the text has more lines than
// allowed, it will match serr.ErrTooLarge. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) CreateSession(ctx context.Context, text string) (dao.Session, error) {
	doc := svc.lexer().NewDocument(text)
	if svc.MaxLines > 0 && doc.Len() > svc.MaxLines {
		return dao.Session{}, serr.New(fmt.Sprintf("%d lines given but at most %d are allowed", doc.Len(), svc.MaxLines), serr.ErrTooLarge)
	}

	s, err := svc.DB.Sessions().Create(ctx, dao.Session{
		Doc:     doc,
		Grammar: version.Grammar,
	})
	if err != nil {
		return dao.Session{}, serr.WrapDB("could not create session", err)
	}

	return svc.withLexer(s), nil
}

// withLexer makes the service's Lexer tokenize the document of a session read
// back from the DB.
func (svc *Service) withLexer(s dao.Session) dao.Session {
	if s.Doc != nil {
		s.Doc.WithEngine(svc.lexer())
	}
	return s
}

// GetSession returns the session with the given ID. A session last saved
// under an older grammar revision is saved again under the current one.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if the ID
// is not valid, it will match serr.ErrBadArgument.
func (svc *Service) GetSession(ctx context.Context, id string) (dao.Session, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Session{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	s, err := svc.DB.Sessions().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Session{}, serr.ErrNotFound
		}
		return dao.Session{}, serr.WrapDB("could not get session", err)
	}

	if s.Grammar != version.Grammar {
		s.Grammar = version.Grammar
		s, err = svc.DB.Sessions().Update(ctx, uuidID, s)
		if err != nil {
			return dao.Session{}, serr.WrapDB("could not update session grammar", err)
		}
	}

	return svc.withLexer(s), nil
}

// GetAllSessions returns all sessions currently in persistence.
func (svc *Service) GetAllSessions(ctx context.Context) ([]dao.Session, error) {
	all, err := svc.DB.Sessions().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	for i := range all {
		all[i] = svc.withLexer(all[i])
	}
	return all, nil
}

// EditSession replaces lines [start, end) of the session's document with the
// given lines and saves it. Along with the updated session, it returns the
// range of lines [from, to) whose tokens may have changed; every other line is
// exactly as it was.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the range is out of bounds or a
// line contains a line break, it will match serr.ErrBadArgument. If the
// result would have more lines than allowed, it will match serr.ErrTooLarge.
// If the error occured due to an unexpected problem with the DB, it will match
// serr.ErrDB.
func (svc *Service) EditSession(ctx context.Context, id string, start, end int, lines []string) (s dao.Session, from, to int, err error) {
	if err := svc.checkLines(lines); err != nil {
		return dao.Session{}, 0, 0, err
	}

	svc.editMtx.Lock()
	defer svc.editMtx.Unlock()

	s, err = svc.GetSession(ctx, id)
	if err != nil {
		return dao.Session{}, 0, 0, err
	}

	newLen := s.Doc.Len() - (end - start) + len(lines)
	if svc.MaxLines > 0 && newLen > svc.MaxLines {
		return dao.Session{}, 0, 0, serr.New(fmt.Sprintf("edit would give %d lines but at most %d are allowed", newLen, svc.MaxLines), serr.ErrTooLarge)
	}

	from, to, err = s.Doc.Edit(start, end, lines)
	if err != nil {
		return dao.Session{}, 0, 0, serr.New("", err, serr.ErrBadArgument)
	}

	s, err = svc.DB.Sessions().Update(ctx, s.ID, s)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Session{}, 0, 0, serr.ErrNotFound
		}
		return dao.Session{}, 0, 0, serr.WrapDB("could not save session", err)
	}

	return svc.withLexer(s), from, to, nil
}

// DeleteSession deletes the session with the given ID. It returns the deleted
// session just after it was deleted.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if the ID
// is not valid, it will match serr.ErrBadArgument.
func (svc *Service) DeleteSession(ctx context.Context, id string) (dao.Session, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Session{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	s, err := svc.DB.Sessions().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Session{}, serr.ErrNotFound
		}
		return dao.Session{}, serr.WrapDB("could not delete session", err)
	}

	return svc.withLexer(s), nil
}
