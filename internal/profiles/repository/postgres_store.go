package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentsDDL = `
create table if not exists documents (
  collection text not null,
  key        text not null,
  body       jsonb not null,
  updated_at timestamptz not null default now(),
  primary key (collection, key)
);
create index if not exists documents_username_idx on documents (collection, (body->>'username'));
`

// PostgresStore keeps documents as JSONB rows. It is the self-hosted
// alternative to Firestore.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, documentsDDL); err != nil {
		return fmt.Errorf("failed to ensure documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Get(ctx context.Context, collection, key string) (map[string]interface{}, error) {
	const q = `select body from documents where collection = $1 and key = $2`

	var body []byte
	err := s.db.QueryRow(ctx, q, collection, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, key, err)
	}
	return decodeDoc(body)
}

func (s *PostgresStore) Set(ctx context.Context, collection, key string, data map[string]interface{}) error {
	const q = `
insert into documents (collection, key, body, updated_at)
values ($1, $2, $3, now())
on conflict (collection, key) do update
set body = excluded.body,
    updated_at = now();
`
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if _, err := s.db.Exec(ctx, q, collection, key, body); err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *PostgresStore) QueryEquals(ctx context.Context, collection, field, value string) ([]Document, error) {
	const q = `select key, body from documents where collection = $1 and body->>$2 = $3 order by updated_at, key`

	rows, err := s.db.Query(ctx, q, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}
	return scanDocuments(rows)
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	const q = `select key, body from documents where collection = $1 order by key`

	rows, err := s.db.Query(ctx, q, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return scanDocuments(rows)
}

func scanDocuments(rows pgx.Rows) ([]Document, error) {
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			key  string
			body []byte
		)
		if err := rows.Scan(&key, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		data, err := decodeDoc(body)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{Key: key, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return out, nil
}
