package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spinwheel/internal/models"
)

// SQLiteStore backs the capacity store with a single-file SQLite
// database. The connection pool is capped at one connection, so every
// statement runs serialized; combined with the guarded UPDATEs this
// gives the same exactly-once increment behavior as Postgres.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS participants (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			phone       TEXT NOT NULL,
			spin_result TEXT,
			created_at  INTEGER NOT NULL
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

func (s *SQLiteStore) CreateParticipant(ctx context.Context, name, phone string) (models.Participant, error) {
	p := models.Participant{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (id, name, phone, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Phone, p.CreatedAt.UnixMilli())
	if err != nil {
		return models.Participant{}, fmt.Errorf("insert participant: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) Participant(ctx context.Context, id string) (models.Participant, error) {
	var p models.Participant
	var result sql.NullString
	var createdMs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, spin_result, created_at FROM participants WHERE id = ?`,
		id).Scan(&p.ID, &p.Name, &p.Phone, &result, &createdMs)
	if err == sql.ErrNoRows {
		return models.Participant{}, ErrNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("select participant: %w", err)
	}
	p.SpinResult = result.String
	p.CreatedAt = time.UnixMilli(createdMs)
	return p, nil
}

func (s *SQLiteStore) PrizeSlots(ctx context.Context) ([]models.PrizeSlot, error) {
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

func (s *SQLiteStore) IncrementWinners(ctx context.Context, slotID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE prize_slots
		    SET current_winners = current_winners + 1
		  WHERE id = ? AND current_winners < max_winners`,
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

func (s *SQLiteStore) ClaimSpinResult(ctx context.Context, id, label string) (string, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE participants SET spin_result = ? WHERE id = ? AND spin_result IS NULL`,
		label, id)
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

	var stored sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT spin_result FROM participants WHERE id = ?`, id).Scan(&stored)
	if err == sql.ErrNoRows {
		return "", false, ErrNotFound
	}
	if err != nil {
		return "", false, fmt.Errorf("claim spin result: %w", err)
	}
	return stored.String, false, nil
}

func (s *SQLiteStore) Initialize(ctx context.Context, slots []models.PrizeSlot) error {
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
			 VALUES (?, ?, ?, ?, ?, ?)`,
			slot.ID, slot.Name, slot.MaxWinners, slot.CurrentWinners, slot.Color, i)
		if err != nil {
			return fmt.Errorf("seed slot %s: %w", slot.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ResetWinners(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `UPDATE prize_slots SET current_winners = 0`)
	if err != nil {
		return fmt.Errorf("reset winners: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
