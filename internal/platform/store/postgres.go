package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Postgres keeps every collection in the documents table (see migrations/0001_documents.sql).
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) FetchAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := p.pool.Query(ctx, `
    SELECT body
    FROM documents
    WHERE collection = $1
    ORDER BY seq
  `, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var body []byte
	err := p.pool.QueryRow(ctx, `
    SELECT body FROM documents WHERE collection = $1 AND id = $2
  `, collection, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Postgres) SaveNew(ctx context.Context, collection, id string, body json.RawMessage) error {
	_, err := p.pool.Exec(ctx, `
    INSERT INTO documents (collection, id, body)
    VALUES ($1, $2, $3::jsonb)
  `, collection, id, string(body))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrDuplicateID)
	}
	return err
}

func (p *Postgres) Update(ctx context.Context, collection, id string, body json.RawMessage) error {
	tag, err := p.pool.Exec(ctx, `
    UPDATE documents
    SET body = $3::jsonb, updated_at = now()
    WHERE collection = $1 AND id = $2
  `, collection, id, string(body))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return err
}

func (p *Postgres) BatchUpdate(ctx context.Context, collection string, patches []Patch) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, patch := range patches {
		fields, err := json.Marshal(patch.Fields)
		if err != nil {
			return fmt.Errorf("encode patch %s: %w", patch.ID, err)
		}
		if _, err := tx.Exec(ctx, `
      UPDATE documents
      SET body = body || $3::jsonb, updated_at = now()
      WHERE collection = $1 AND id = $2
    `, collection, patch.ID, string(fields)); err != nil {
			return fmt.Errorf("patch %s/%s: %w", collection, patch.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) FetchObjectStore(ctx context.Context, key string) (map[string]json.RawMessage, error) {
	var body []byte
	err := p.pool.QueryRow(ctx, `SELECT body FROM object_stores WHERE key = $1`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode object store %s: %w", key, err)
	}
	return out, nil
}

func (p *Postgres) UpdateObjectStore(ctx context.Context, key string, data map[string]json.RawMessage) error {
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
    INSERT INTO object_stores (key, body)
    VALUES ($1, $2::jsonb)
    ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
  `, key, string(body))
	return err
}

func (p *Postgres) PutObjectEntry(ctx context.Context, key, entryKey string, body json.RawMessage) error {
	_, err := p.pool.Exec(ctx, `
    INSERT INTO object_stores (key, body)
    VALUES ($1, jsonb_build_object($2::text, $3::jsonb))
    ON CONFLICT (key) DO UPDATE
    SET body = object_stores.body || jsonb_build_object($2::text, $3::jsonb), updated_at = now()
  `, key, entryKey, string(body))
	return err
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
