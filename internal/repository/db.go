package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrStorageUnavailable wraps any storage failure. Reconciliation cannot
// proceed without the PO snapshot, so callers propagate this unchanged.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the sqlite-backed storage for purchase orders, invoices, the
// team leaderboard and the query history.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the sqlite database at path, applies the
// schema and inserts seed data into empty tables.
func Open(path string, busyTimeout time.Duration, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding database: %w", err)
	}

	logger.Info("database ready", "path", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HealthCheck pings the database to catch path/permission issues early.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS purchase_orders (
			po_id      TEXT PRIMARY KEY,
			vendor     TEXT NOT NULL,
			item       TEXT NOT NULL,
			qty        INTEGER NOT NULL,
			unit_price REAL NOT NULL,
			total      REAL NOT NULL,
			date       TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			invoice_id        TEXT PRIMARY KEY,
			vendor            TEXT NOT NULL,
			item              TEXT NOT NULL,
			qty               INTEGER NOT NULL,
			unit_price        REAL NOT NULL,
			total             REAL NOT NULL,
			date              TEXT NOT NULL,
			po_id             TEXT,
			status            TEXT DEFAULT 'pending',
			validation_result TEXT,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (po_id) REFERENCES purchase_orders (po_id)
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			team_id               TEXT PRIMARY KEY,
			team_name             TEXT NOT NULL,
			score                 INTEGER DEFAULT 0,
			validations_completed INTEGER DEFAULT 0,
			queries_executed      INTEGER DEFAULT 0,
			last_updated          TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS query_history (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			natural_language_query TEXT NOT NULL,
			sql_query              TEXT NOT NULL,
			execution_time         REAL,
			result_count           INTEGER,
			team_id                TEXT,
			created_at             TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// seed inserts the demo purchase orders and teams, but only into empty
// tables so existing data survives restarts.
func (s *Store) seed() error {
	var poCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM purchase_orders`).Scan(&poCount); err != nil {
		return err
	}
	if poCount == 0 {
		seedPOs := [][]any{
			{"PO-2024-001", "ABC Electronics", "Laptop Computer", 10, 1200.00, 12000.00, "2024-09-01"},
			{"PO-2024-002", "Office Supplies Co", "Office Chair", 25, 300.00, 7500.00, "2024-09-02"},
			{"PO-2024-003", "Tech Solutions Inc", "Monitor 24inch", 15, 250.00, 3750.00, "2024-09-03"},
			{"PO-2024-004", "ABC Electronics", "Wireless Mouse", 50, 45.00, 2250.00, "2024-09-04"},
			{"PO-2024-005", "Industrial Parts Ltd", "Steel Beam 10ft", 20, 180.00, 3600.00, "2024-09-05"},
			{"PO-2024-006", "Office Supplies Co", "Printer Paper A4", 100, 8.50, 850.00, "2024-09-06"},
			{"PO-2024-007", "Tech Solutions Inc", "Network Switch", 5, 850.00, 4250.00, "2024-09-07"},
			{"PO-2024-008", "Medical Supplies Inc", "Surgical Mask", 1000, 2.50, 2500.00, "2024-09-08"},
			{"PO-2024-009", "ABC Electronics", "USB Cable Type-C", 200, 12.00, 2400.00, "2024-09-09"},
			{"PO-2024-010", "Construction Materials", "Concrete Mixer", 3, 2500.00, 7500.00, "2024-09-10"},
		}
		for _, row := range seedPOs {
			if _, err := s.db.Exec(
				`INSERT INTO purchase_orders (po_id, vendor, item, qty, unit_price, total, date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				row...,
			); err != nil {
				return err
			}
		}
		s.logger.Info("seeded purchase orders", "count", len(seedPOs))
	}

	var teamCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM leaderboard`).Scan(&teamCount); err != nil {
		return err
	}
	if teamCount == 0 {
		seedTeams := [][]any{
			{"team-001", "Data Wizards", 250, 15, 8},
			{"team-002", "AI Innovators", 180, 12, 6},
			{"team-003", "Code Breakers", 320, 20, 12},
			{"team-004", "Tech Titans", 340, 26, 23},
			{"team-005", "Digital Dragons", 280, 18, 10},
			{"team-006", "MAQ Software", 110, 4, 7},
			{"team-007", "Quad", 10, 0, 0},
		}
		for _, row := range seedTeams {
			if _, err := s.db.Exec(
				`INSERT INTO leaderboard (team_id, team_name, score, validations_completed, queries_executed) VALUES (?, ?, ?, ?, ?)`,
				row...,
			); err != nil {
				return err
			}
		}
		s.logger.Info("seeded leaderboard teams", "count", len(seedTeams))
	}
	return nil
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
