package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// Store implements store.Store on top of DB.
type Store struct {
	db *DB
}

var _ store.Store = (*Store)(nil)

// Open opens the database at path and returns its store.
// Closing the store closes the database.
func Open(path string) (*Store, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	return db.Store(), nil
}

func (s *Store) Create(ctx context.Context, id model.ListID) error {
	result, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO lists (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		string(id), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrDuplicateID
	}
	return nil
}

func listExists(ctx context.Context, tx *sql.Tx, id model.ListID) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM lists WHERE id = ?`, string(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.NotFoundError{ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to find list: %w", err)
	}
	return nil
}

// Append computes the next position and inserts inside one transaction;
// the (list_id, position) primary key rejects any duplicate position.
func (s *Store) Append(ctx context.Context, id model.ListID, d model.Draft) (model.Item, error) {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := listExists(ctx, tx, id); err != nil {
		return model.Item{}, err
	}

	var pos int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM items WHERE list_id = ?`, string(id),
	).Scan(&pos)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to compute position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (list_id, position, text, priority, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(id), pos, d.Text, string(d.Priority), time.Now().Unix(),
	)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Item{}, fmt.Errorf("failed to commit item: %w", err)
	}
	return model.Item{Position: pos, Text: d.Text, Priority: d.Priority}, nil
}

func (s *Store) Get(ctx context.Context, id model.ListID) (model.List, error) {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return model.List{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := listExists(ctx, tx, id); err != nil {
		return model.List{}, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT position, text, priority FROM items WHERE list_id = ? ORDER BY position`, string(id),
	)
	if err != nil {
		return model.List{}, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var (
			it       model.Item
			priority string
		)
		if err := rows.Scan(&it.Position, &it.Text, &priority); err != nil {
			return model.List{}, fmt.Errorf("failed to scan item: %w", err)
		}
		it.Priority = model.Priority(priority)
		if !it.Priority.IsValid() {
			return model.List{}, fmt.Errorf("item %d: unknown priority %q", it.Position, priority)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return model.List{}, fmt.Errorf("failed to iterate items: %w", err)
	}
	return model.List{ID: id, Items: items}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
