package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/dekarrin/sheetlex/server/dao"
	"github.com/google/uuid"
)

// storedSession is a session with its document kept in encoded form, so that
// no caller ever holds the stored copy.
type storedSession struct {
	id       uuid.UUID
	doc      []byte
	grammar  string
	created  time.Time
	modified time.Time
}

func NewSessionsRepository() *InMemorySessionsRepository {
	return &InMemorySessionsRepository{
		seshes: make(map[uuid.UUID]storedSession),
	}
}

type InMemorySessionsRepository struct {
	mtx    sync.RWMutex
	seshes map[uuid.UUID]storedSession
}

func (imsr *InMemorySessionsRepository) Close() error {
	return nil
}

func (imsr *InMemorySessionsRepository) Create(ctx context.Context, s dao.Session) (dao.Session, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Session{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	stored, err := toStored(s)
	if err != nil {
		return dao.Session{}, err
	}
	stored.id = newUUID
	stored.created = now
	stored.modified = now

	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	if _, ok := imsr.seshes[newUUID]; ok {
		return dao.Session{}, dao.ErrConstraintViolation
	}
	imsr.seshes[newUUID] = stored

	return fromStored(stored)
}

func (imsr *InMemorySessionsRepository) GetAll(ctx context.Context) ([]dao.Session, error) {
	imsr.mtx.RLock()
	defer imsr.mtx.RUnlock()

	all := make([]dao.Session, 0, len(imsr.seshes))
	for k := range imsr.seshes {
		s, err := fromStored(imsr.seshes[k])
		if err != nil {
			return nil, err
		}
		all = append(all, s)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})

	return all, nil
}

func (imsr *InMemorySessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	imsr.mtx.RLock()
	defer imsr.mtx.RUnlock()

	stored, ok := imsr.seshes[id]
	if !ok {
		return dao.Session{}, dao.ErrNotFound
	}

	return fromStored(stored)
}

func (imsr *InMemorySessionsRepository) Update(ctx context.Context, id uuid.UUID, s dao.Session) (dao.Session, error) {
	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	existing, ok := imsr.seshes[id]
	if !ok {
		return dao.Session{}, dao.ErrNotFound
	}

	updated, err := toStored(s)
	if err != nil {
		return dao.Session{}, err
	}
	updated.id = existing.id
	updated.created = existing.created
	updated.modified = time.Now()

	imsr.seshes[id] = updated

	return fromStored(updated)
}

func (imsr *InMemorySessionsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	stored, ok := imsr.seshes[id]
	if !ok {
		return dao.Session{}, dao.ErrNotFound
	}

	delete(imsr.seshes, id)

	return fromStored(stored)
}

func toStored(s dao.Session) (storedSession, error) {
	if s.Doc == nil {
		return storedSession{}, fmt.Errorf("session has no document")
	}
	data, err := s.Doc.MarshalBinary()
	if err != nil {
		return storedSession{}, fmt.Errorf("encode document: %w", err)
	}
	return storedSession{
		doc:     data,
		grammar: s.Grammar,
	}, nil
}

func fromStored(stored storedSession) (dao.Session, error) {
	doc := &lex.Document{}
	if err := doc.UnmarshalBinary(stored.doc); err != nil {
		return dao.Session{}, fmt.Errorf("%w: document: %s", dao.ErrDecodingFailure, err)
	}

	return dao.Session{
		ID:       stored.id,
		Doc:      doc,
		Grammar:  stored.grammar,
		Created:  stored.created,
		Modified: stored.modified,
	}, nil
}
