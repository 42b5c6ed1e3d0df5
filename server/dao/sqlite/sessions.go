package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/dekarrin/sheetlex/server/dao"
	"github.com/google/uuid"
)

func NewSessionsDBConn(file string) (*SessionsDB, error) {
	repo := &SessionsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

type SessionsDB struct {
	db *sql.DB
}

func (repo *SessionsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL PRIMARY KEY,
		document TEXT NOT NULL,
		grammar TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *SessionsDB) Create(ctx context.Context, s dao.Session) (dao.Session, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Session{}, fmt.Errorf("could not generate ID: %w", err)
	}

	encDoc, err := convertToDB_Document(s.Doc)
	if err != nil {
		return dao.Session{}, err
	}

	stmt, err := repo.db.Prepare(`INSERT INTO sessions (id, document, grammar, created, modified) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.ExecContext(ctx, newUUID.String(), encDoc, s.Grammar, now.Unix(), now.Unix())
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *SessionsDB) GetAll(ctx context.Context) ([]dao.Session, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, document, grammar, created, modified FROM sessions ORDER BY id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Session

	for rows.Next() {
		var id string
		var encDoc string
		var s dao.Session
		var created int64
		var modified int64

		err = rows.Scan(
			&id,
			&encDoc,
			&s.Grammar,
			&created,
			&modified,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		s.ID, err = uuid.Parse(id)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid", id)
		}
		s.Doc, err = convertFromDB_Document(encDoc)
		if err != nil {
			return all, fmt.Errorf("stored document for %s: %w", id, err)
		}
		s.Created = time.Unix(created, 0)
		s.Modified = time.Unix(modified, 0)

		all = append(all, s)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *SessionsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	s := dao.Session{
		ID: id,
	}
	var encDoc string
	var created int64
	var modified int64

	row := repo.db.QueryRowContext(ctx, `SELECT document, grammar, created, modified FROM sessions WHERE id = ?;`,
		id.String(),
	)
	err := row.Scan(
		&encDoc,
		&s.Grammar,
		&created,
		&modified,
	)
	if err != nil {
		return s, wrapDBError(err)
	}

	s.Doc, err = convertFromDB_Document(encDoc)
	if err != nil {
		return s, fmt.Errorf("stored document for %s: %w", id, err)
	}
	s.Created = time.Unix(created, 0)
	s.Modified = time.Unix(modified, 0)

	return s, nil
}

func (repo *SessionsDB) Update(ctx context.Context, id uuid.UUID, s dao.Session) (dao.Session, error) {
	encDoc, err := convertToDB_Document(s.Doc)
	if err != nil {
		return dao.Session{}, err
	}

	res, err := repo.db.ExecContext(ctx, `UPDATE sessions SET document=?, grammar=?, modified=? WHERE id=?;`,
		encDoc,
		s.Grammar,
		time.Now().Unix(),
		id.String(),
	)
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Session{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, id)
}

func (repo *SessionsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *SessionsDB) Close() error {
	return repo.db.Close()
}

func convertToDB_Document(doc *lex.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("session has no document")
	}
	data := rezi.EncBinary(doc)
	return base64.StdEncoding.EncodeToString(data), nil
}

func convertFromDB_Document(s string) (*lex.Document, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err)
	}

	doc := &lex.Document{}
	if _, err := rezi.DecBinary(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err)
	}
	return doc, nil
}
