package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlecore/internal/game/field"
)

// ErrResultNotFound is returned when a battle result lookup yields no results.
var ErrResultNotFound = errors.New("battle result not found")

// ErrResultExists is returned when a battle id has already been recorded.
var ErrResultExists = errors.New("battle result already recorded")

// BattleResult is the recorded outcome of one finished battle.
type BattleResult struct {
	BattleID  string
	Seed      uint64
	Winner    field.Side
	Turns     int
	RunType   string
	AIPolicy  string
	CreatedAt time.Time
}

// ResultRepository records finished battles.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a ResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// Record inserts res.
//
// Precondition: res.BattleID must be non-empty.
// Postcondition: Returns ErrResultExists if the battle id is already stored.
func (r *ResultRepository) Record(ctx context.Context, res BattleResult) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO battle_results (battle_id, seed, winner, turns, run_type, ai_policy)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		res.BattleID, int64(res.Seed), int16(res.Winner), res.Turns, res.RunType, res.AIPolicy,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrResultExists
		}
		return fmt.Errorf("inserting battle result: %w", err)
	}
	return nil
}

// Get returns the result recorded for battleID.
//
// Postcondition: Returns ErrResultNotFound if no such battle was recorded.
func (r *ResultRepository) Get(ctx context.Context, battleID string) (BattleResult, error) {
	var (
		res    BattleResult
		seed   int64
		winner int16
	)
	err := r.db.QueryRow(ctx, `
		SELECT battle_id, seed, winner, turns, run_type, ai_policy, created_at
		FROM battle_results WHERE battle_id = $1`,
		battleID,
	).Scan(&res.BattleID, &seed, &winner, &res.Turns, &res.RunType, &res.AIPolicy, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BattleResult{}, ErrResultNotFound
		}
		return BattleResult{}, fmt.Errorf("querying battle result: %w", err)
	}
	res.Seed, res.Winner = uint64(seed), field.Side(winner)
	return res, nil
}

// WinCounts returns how many recorded battles each side won, draws under field.SideBoth.
func (r *ResultRepository) WinCounts(ctx context.Context) (map[field.Side]int, error) {
	rows, err := r.db.Query(ctx, `SELECT winner, COUNT(*) FROM battle_results GROUP BY winner`)
	if err != nil {
		return nil, fmt.Errorf("counting results: %w", err)
	}
	defer rows.Close()
	out := make(map[field.Side]int)
	for rows.Next() {
		var winner int16
		var n int
		if err := rows.Scan(&winner, &n); err != nil {
			return nil, fmt.Errorf("scanning result count: %w", err)
		}
		out[field.Side(winner)] = n
	}
	return out, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
