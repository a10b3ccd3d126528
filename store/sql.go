package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// SQLStore keeps one row per project in a projects table, the snapshot
// stored as a JSON document.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore opens dsn with driver and creates the projects table if needed
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	if driver == DriverSQLite {
		// sqlite allows one writer; a single connection avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	s, err := NewSQLStoreFromDB(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStoreFromDB wraps an already opened database
func NewSQLStoreFromDB(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	s := &SQLStore{db: db, driver: driver}
	if _, err := db.ExecContext(ctx, s.schema()); err != nil {
		return nil, errors.Wrap(err, "create projects table")
	}
	logger := util.GetLogger("SQLStore")
	logger.Debug().Str("driver", driver).Msg("Opened snapshot store")
	return s, nil
}

func (s *SQLStore) schema() string {
	dataType := "TEXT"
	if s.driver == DriverMySQL {
		dataType = "LONGTEXT"
	}
	return "CREATE TABLE IF NOT EXISTS projects (" +
		"id VARCHAR(255) PRIMARY KEY, " +
		"data " + dataType + " NOT NULL, " +
		"updated_at TIMESTAMP NOT NULL)"
}

func (s *SQLStore) selectQuery() string {
	if s.driver == DriverPostgres {
		return "SELECT data FROM projects WHERE id = $1"
	}
	return "SELECT data FROM projects WHERE id = ?"
}

func (s *SQLStore) upsertQuery() string {
	switch s.driver {
	case DriverMySQL:
		return "INSERT INTO projects (id, data, updated_at) VALUES (?, ?, ?) " +
			"ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = VALUES(updated_at)"
	case DriverPostgres:
		return "INSERT INTO projects (id, data, updated_at) VALUES ($1, $2, $3) " +
			"ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at"
	default:
		return "INSERT INTO projects (id, data, updated_at) VALUES (?, ?, ?) " +
			"ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at"
	}
}

func (s *SQLStore) Load(ctx context.Context, projectID string) (projectfs.Snapshot, error) {
	if err := validateID(projectID); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, s.selectQuery(), projectID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "project %s", projectID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load project %s", projectID)
	}

	var snap projectfs.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, errors.Wrapf(err, "decode project %s", projectID)
	}
	return snap, nil
}

func (s *SQLStore) Save(ctx context.Context, projectID string, snap projectfs.Snapshot) error {
	if err := validateID(projectID); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrapf(err, "encode project %s", projectID)
	}
	if _, err := s.db.ExecContext(ctx, s.upsertQuery(), projectID, string(data), time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "save project %s", projectID)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
