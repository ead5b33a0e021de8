package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"spinwheel/internal/models"
)

// PostgresStore backs the capacity store with Postgres. Both conditional
// writes express their guard inside the UPDATE predicate, so the
// database applies read-check-write as one indivisible statement and no
// application-side locking is needed.
type PostgresStore struct {
	db *sql.DB
}

func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS participants (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			phone       TEXT NOT NULL,
			spin_result TEXT,
			created_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS prize_slots (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			max_winners     INTEGER NOT NULL,
			current_winners INTEGER NOT NULL DEFAULT 0,
			color           TEXT NOT NULL,
			position        INTEGER NOT NULL
		)`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateParticipant(ctx context.Context, name, phone string) (models.Participant, error) {
	p := models.Participant{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (id, name, phone, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Phone, p.CreatedAt)
	if err != nil {
		return models.Participant{}, fmt.Errorf("insert participant: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Participant(ctx context.Context, id string) (models.Participant, error) {
	var p models.Participant
	var result sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, spin_result, created_at FROM participants WHERE id = $1`,
		id).Scan(&p.ID, &p.Name, &p.Phone, &result, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Participant{}, ErrNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("select participant: %w", err)
	}
	p.SpinResult = result.String
	return p, nil
}

func (s *PostgresStore) PrizeSlots(ctx context.Context) ([]models.PrizeSlot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, max_winners, current_winners, color FROM prize_slots ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("select slots: %w", err)
	}
	defer rows.Close()

	var slots []models.PrizeSlot
	for rows.Next() {
		var slot models.PrizeSlot
		if err := rows.Scan(&slot.ID, &slot.Name, &slot.MaxWinners, &slot.CurrentWinners, &slot.Color); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *PostgresStore) IncrementWinners(ctx context.Context, slotID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE prize_slots
		    SET current_winners = current_winners + 1
		  WHERE id = $1 AND current_winners < max_winners`,
		slotID)
	if err != nil {
		return fmt.Errorf("increment winners: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment winners: %w", err)
	}
	if n == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

func (s *PostgresStore) ClaimSpinResult(ctx context.Context, id, label string) (string, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE participants SET spin_result = $2 WHERE id = $1 AND spin_result IS NULL`,
		id, label)
	if err != nil {
		return "", false, fmt.Errorf("claim spin result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("claim spin result: %w", err)
	}
	if n == 1 {
		return label, true, nil
	}

	// Either the participant does not exist or someone claimed first.
	var stored sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT spin_result FROM participants WHERE id = $1`, id).Scan(&stored)
	if err == sql.ErrNoRows {
		return "", false, ErrNotFound
	}
	if err != nil {
		return "", false, fmt.Errorf("claim spin result: %w", err)
	}
	return stored.String, false, nil
}

func (s *PostgresStore) Initialize(ctx context.Context, slots []models.PrizeSlot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM prize_slots`).Scan(&count); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if count > 0 {
		return tx.Commit()
	}

	for i, slot := range slots {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO prize_slots (id, name, max_winners, current_winners, color, position)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			slot.ID, slot.Name, slot.MaxWinners, slot.CurrentWinners, slot.Color, i)
		if err != nil {
			return fmt.Errorf("seed slot %s: %w", slot.ID, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ResetWinners(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `UPDATE prize_slots SET current_winners = 0`)
	if err != nil {
		return fmt.Errorf("reset winners: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
