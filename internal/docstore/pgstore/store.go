package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/notes/internal/common/clock"
	"github.com/AlibekovAA/notes/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/notes/internal/common/crypto"
	"github.com/AlibekovAA/notes/internal/common/db"
	"github.com/AlibekovAA/notes/internal/docstore"
)

type Store struct {
	pool  *pgxpool.Pool
	ids   commoncrypto.IDGenerator
	clock clock.Clock
}

func New(pool *pgxpool.Pool, ids commoncrypto.IDGenerator, clk clock.Clock) *Store {
	return &Store{pool: pool, ids: ids, clock: clk}
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
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at)
		 VALUES ($1, $2, $3::jsonb, $4, $4)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		collection, id, string(raw), now.UTC(),
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
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data::text FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		return docstore.Document{}, db.HandleQueryError(err, docstore.ErrNotFound, "get document", start)
	}
	db.MeasureQueryDuration("get document", start)

	fields, err := docstore.Decode(raw)
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
	rows, err := s.pool.Query(ctx,
		`SELECT id, data::text FROM documents
		 WHERE collection = $1 AND data @> jsonb_build_object($2::text, $3::text)
		 ORDER BY id ASC`,
		collection, filter.Field, filter.Value,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "query documents", start)
	}
	defer rows.Close()

	docs := make([]docstore.Document, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan document", start)
		}
		fields, err := docstore.Decode(raw)
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

// Merge relies on jsonb ||, which replaces top-level keys only: nested
// objects are replaced whole and a nil value is stored as null.
func (s *Store) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
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
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = $4
		 WHERE collection = $1 AND id = $2`,
		collection, id, string(raw), now.UTC(),
	)
	if err != nil {
		return db.HandleExecError(err, "merge document", start)
	}
	db.MeasureQueryDuration("merge document", start)
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	if err := docstore.ValidatePath(collection, id); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	return db.HandleExecError(err, "remove document", start)
}
