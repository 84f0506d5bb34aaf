package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/modifier"
)

// ModifierRepository stores the modifier snapshots of a session. It
// implements modifier.SnapshotStore.
type ModifierRepository struct {
	db *pgxpool.Pool
}

// NewModifierRepository creates a ModifierRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewModifierRepository(db *pgxpool.Pool) *ModifierRepository {
	return &ModifierRepository{db: db}
}

// Save replaces every snapshot stored for sessionID with snaps, keeping their order.
//
// Precondition: sessionID must be non-empty.
// Postcondition: on error the previously saved snapshots are untouched.
func (r *ModifierRepository) Save(ctx context.Context, sessionID string, snaps []modifier.Snapshot) error {
	if sessionID == "" {
		return errors.New("saving modifiers: empty session id")
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM modifier_snapshots WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("clearing snapshots: %w", err)
		}
		batch := &pgx.Batch{}
		for i, s := range snaps {
			args := s.Args
			if args == nil {
				args = []any{}
			}
			batch.Queue(
				`INSERT INTO modifier_snapshots (session_id, position, id, kind, side, stack, args)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				sessionID, i, s.ID, string(s.Kind), int16(s.Side), s.Stack, args,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting snapshots: %w", err)
		}
		return nil
	})
}

// Load returns the snapshots saved for sessionID in the order they were saved.
//
// Postcondition: Returns modifier.ErrSnapshotNotFound when nothing is stored.
func (r *ModifierRepository) Load(ctx context.Context, sessionID string) ([]modifier.Snapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, kind, side, stack, args
		FROM modifier_snapshots
		WHERE session_id = $1
		ORDER BY position ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	snaps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (modifier.Snapshot, error) {
		var (
			id, kind string
			side     int16
			s        modifier.Snapshot
		)
		if err := row.Scan(&id, &kind, &side, &s.Stack, &s.Args); err != nil {
			return s, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return s, fmt.Errorf("snapshot id %q: %w", id, err)
		}
		s.ID, s.Kind, s.Side = parsed, modifier.Kind(kind), field.Side(side)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return nil, modifier.ErrSnapshotNotFound
	}
	return snaps, nil
}

// Delete removes every snapshot of sessionID.
//
// Postcondition: Returns modifier.ErrSnapshotNotFound when nothing was stored.
func (r *ModifierRepository) Delete(ctx context.Context, sessionID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM modifier_snapshots WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return modifier.ErrSnapshotNotFound
	}
	return nil
}
