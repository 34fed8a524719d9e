package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SQLStore keeps every key in a single kv_items table. It runs on SQLite
// (the default local file) or Postgres; only the placeholder style differs.
type SQLStore struct {
	db       *sql.DB
	numbered bool
}

func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	switch driver {
	case "sqlite3":
		return &SQLStore{db: db}, nil
	case "postgres":
		return &SQLStore{db: db, numbered: true}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT item_value FROM kv_items WHERE item_key = ?`),
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO kv_items (item_key, item_value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (item_key) DO UPDATE SET
		    item_value = excluded.item_value,
		    updated_at = CURRENT_TIMESTAMP`),
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	query := s.rebind(`DELETE FROM kv_items WHERE item_key = ?`)
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, query, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// rebind rewrites ? placeholders to $1..$n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
