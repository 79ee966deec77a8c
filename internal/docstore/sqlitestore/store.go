package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/AlibekovAA/notes/internal/common/clock"
	"github.com/AlibekovAA/notes/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/notes/internal/common/crypto"
	"github.com/AlibekovAA/notes/internal/common/db"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	"github.com/AlibekovAA/notes/internal/docstore"
)

type Store struct {
	db    *sql.DB
	ids   commoncrypto.IDGenerator
	clock clock.Clock
}

func New(sqlDB *sql.DB, ids commoncrypto.IDGenerator, clk clock.Clock) *Store {
	return &Store{db: sqlDB, ids: ids, clock: clk}
}

func (s *Store) Put(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := docstore.ValidatePath(collection, id); err != nil {
		return err
	}
	now := s.clock.Now()
	raw, err := docstore.Encode(fields, now)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, string(raw), docstore.FormatTime(now), docstore.FormatTime(now),
	)
	return db.HandleExecError(err, "put document", start)
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := docstore.ValidatePath(collection, id); err != nil {
		return docstore.Document{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		return docstore.Document{}, db.HandleQueryError(err, docstore.ErrNotFound, "get document", start)
	}
	db.MeasureQueryDuration("get document", start)

	fields, err := docstore.Decode([]byte(raw))
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}

func (s *Store) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return "", err
	}
	if err := s.Put(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	if err := docstore.ValidateName(collection); err != nil {
		return nil, err
	}
	if err := docstore.ValidateName(filter.Field); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents
		 WHERE collection = ? AND json_extract(data, ?) = ?
		 ORDER BY id ASC`,
		collection, "$."+filter.Field, filter.Value,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "query documents", start)
	}
	defer rows.Close()

	docs := make([]docstore.Document, 0)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan document", start)
		}
		fields, err := docstore.Decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		docs = append(docs, docstore.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "query documents", start)
	}

	db.MeasureQueryDuration("query documents", start)
	return docs, nil
}

// Merge replaces the given top-level fields and leaves the rest untouched.
// Nested objects are replaced whole and a nil value is stored as null.
func (s *Store) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := docstore.ValidatePath(collection, id); err != nil {
		return err
	}
	now := s.clock.Now()
	expr, args, err := setExpression(fields, now)
	if err != nil {
		return err
	}
	args = append(args, docstore.FormatTime(now), collection, id)

	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = `+expr+`, updated_at = ?
		 WHERE collection = ? AND id = ?`,
		args...,
	)
	if err != nil {
		return db.HandleExecError(err, "merge document", start)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return db.HandleExecError(err, "merge document", start)
	}
	db.MeasureQueryDuration("merge document", start)
	if affected == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// setExpression builds json_set(data, '$.f1', json(?), ...) over the
// prepared fields in name order. Names are validated, so paths are safe.
func setExpression(fields docstore.Fields, now time.Time) (string, []any, error) {
	prepared, err := docstore.PrepareFields(fields, now)
	if err != nil {
		return "", nil, err
	}
	if len(prepared) == 0 {
		return "data", nil, nil
	}

	names := make([]string, 0, len(prepared))
	for name := range prepared {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("json_set(data")
	args := make([]any, 0, 2*len(names)+3)
	for _, name := range names {
		raw, err := json.Marshal(prepared[name])
		if err != nil {
			return "", nil, commonerrors.ErrInvalidPayload.WithCause(err)
		}
		b.WriteString(", ?, json(?)")
		args = append(args, "$."+name, string(raw))
	}
	b.WriteString(")")
	return b.String(), args, nil
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	if err := docstore.ValidatePath(collection, id); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	return db.HandleExecError(err, "remove document", start)
}
