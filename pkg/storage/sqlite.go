package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/upm-go/upm/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database. The locator accepts a
// plain path or a sqlite:// URL, matching the database_url config key.
func NewSQLite(locator string) (*SQLite, error) {
	dbPath := strings.TrimPrefix(locator, "sqlite://")

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveReading(ctx context.Context, reading *model.Reading) error {
	if reading.CapturedAt.IsZero() {
		reading.CapturedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO power_readings (remaining_energy, remaining_money, meter_room_id,
		   room_display_name, room_id, building_id, campus_id, room_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.RemainingEnergy, reading.RemainingMoney, reading.MeterRoomID,
		reading.RoomDisplayName, reading.RoomID, reading.BuildingID,
		reading.CampusID, reading.RoomNumber, reading.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (s *SQLite) LatestReading(ctx context.Context) (*model.Reading, error) {
	var r model.Reading
	err := s.db.QueryRowContext(ctx,
		`SELECT remaining_energy, remaining_money, meter_room_id, room_display_name,
		   room_id, building_id, campus_id, room_number, created_at
		 FROM power_readings ORDER BY id DESC LIMIT 1`,
	).Scan(&r.RemainingEnergy, &r.RemainingMoney, &r.MeterRoomID, &r.RoomDisplayName,
		&r.RoomID, &r.BuildingID, &r.CampusID, &r.RoomNumber, &r.CapturedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest reading: %w", err)
	}
	return &r, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
