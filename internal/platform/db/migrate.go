package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema is where the unit's tables live unless --schema is given.
const DefaultSchema = "public"

// migrationLockKey serializes concurrent `migrate up` runs against one database.
const migrationLockKey int64 = 0x5375726741737374

// ErrChecksumMismatch means an applied migration file was edited afterwards.
var ErrChecksumMismatch = errors.New("applied migration has been modified")

var (
	schemaPattern    = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	migrationPattern = regexp.MustCompile(`^(\d+)_[A-Za-z0-9_]+\.sql$`)
)

// ValidSchema reports whether name is safe to interpolate into SQL.
func ValidSchema(name string) bool {
	return schemaPattern.MatchString(name)
}

// Migration is one numbered SQL file.
type Migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

// MigrationStatus pairs a migration file with its ledger row, if any.
type MigrationStatus struct {
	Version   int
	Name      string
	Applied   bool
	Modified  bool
	AppliedAt *time.Time
}

// Migrator applies numbered SQL files from an fs.FS to a PostgreSQL schema
// and records them in a _migrations ledger.
type Migrator struct {
	pool *pgxpool.Pool
	fsys fs.FS
}

func NewMigrator(pool *pgxpool.Pool, fsys fs.FS) *Migrator {
	return &Migrator{pool: pool, fsys: fsys}
}

// LoadMigrations returns the files named NNN_name.sql sorted by version.
// Anything else in the directory is ignored. Two files with the same version
// are an error.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	seen := map[int]string{}
	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(match[1], "%d", &version); err != nil {
			return nil, fmt.Errorf("invalid migration filename %s: %w", entry.Name(), err)
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, entry.Name(), version)
		}
		seen[version] = entry.Name()

		content, err := fs.ReadFile(m.fsys, path.Clean(entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		sum := sha256.Sum256(content)
		out = append(out, Migration{
			Version:  version,
			Name:     entry.Name(),
			SQL:      string(content),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

type ledgerRow struct {
	checksum  string
	appliedAt time.Time
}

// Up applies every pending migration. It returns how many were applied.
func (m *Migrator) Up(ctx context.Context, schema string) (int, error) {
	return m.UpTo(ctx, schema, 0)
}

// UpTo applies pending migrations with version <= target, or all of them
// when target is 0. Each migration commits separately. Applied files whose
// checksum changed stop the run with ErrChecksumMismatch before anything new
// is applied.
func (m *Migrator) UpTo(ctx context.Context, schema string, target int) (int, error) {
	if !ValidSchema(schema) {
		return 0, fmt.Errorf("invalid schema name %q", schema)
	}
	migrations, err := m.LoadMigrations()
	if err != nil {
		return 0, err
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return 0, fmt.Errorf("lock migrations: %w", err)
	}
	defer conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)

	if _, err := conn.Exec(ctx, ledgerDDL(schema)); err != nil {
		return 0, fmt.Errorf("create _migrations in %s: %w", schema, err)
	}
	applied, err := readLedger(ctx, conn, schema)
	if err != nil {
		return 0, err
	}
	if err := verifyChecksums(migrations, applied); err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range pending(migrations, applied, target) {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return count, fmt.Errorf("begin migration %d: %w", mig.Version, err)
		}
		if err := applyMigration(ctx, tx, schema, mig); err != nil {
			tx.Rollback(ctx)
			return count, fmt.Errorf("apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return count, fmt.Errorf("commit migration %d: %w", mig.Version, err)
		}
		count++
	}
	return count, nil
}

// Status lists every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context, schema string) ([]MigrationStatus, error) {
	if !ValidSchema(schema) {
		return nil, fmt.Errorf("invalid schema name %q", schema)
	}
	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, err
	}
	if _, err := m.pool.Exec(ctx, ledgerDDL(schema)); err != nil {
		return nil, fmt.Errorf("create _migrations in %s: %w", schema, err)
	}
	applied, err := readLedger(ctx, m.pool, schema)
	if err != nil {
		return nil, err
	}
	return statusOf(migrations, applied), nil
}

func ledgerDDL(schema string) string {
	return fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %[1]s;
CREATE TABLE IF NOT EXISTS %[1]s._migrations (
    version INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    checksum CHAR(64) NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, schema)
}

func readLedger(ctx context.Context, q Querier, schema string) (map[int]ledgerRow, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT version, checksum, applied_at FROM %s._migrations`, schema))
	if err != nil {
		return nil, fmt.Errorf("read _migrations in %s: %w", schema, err)
	}
	defer rows.Close()

	applied := make(map[int]ledgerRow)
	for rows.Next() {
		var v int
		var row ledgerRow
		if err := rows.Scan(&v, &row.checksum, &row.appliedAt); err != nil {
			return nil, fmt.Errorf("scan _migrations: %w", err)
		}
		applied[v] = row
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, tx Querier, schema string, mig Migration) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL search_path TO %s, public", schema)); err != nil {
		return fmt.Errorf("set search_path: %w", err)
	}
	if _, err := tx.Exec(ctx, mig.SQL); err != nil {
		return fmt.Errorf("execute SQL: %w", err)
	}
	_, err := tx.Exec(ctx, "INSERT INTO _migrations (version, name, checksum) VALUES ($1, $2, $3)",
		mig.Version, mig.Name, mig.Checksum)
	if err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return nil
}

func verifyChecksums(migrations []Migration, applied map[int]ledgerRow) error {
	var modified []string
	for _, mig := range migrations {
		if row, ok := applied[mig.Version]; ok && strings.TrimSpace(row.checksum) != mig.Checksum {
			modified = append(modified, mig.Name)
		}
	}
	if len(modified) > 0 {
		return fmt.Errorf("%w: %s", ErrChecksumMismatch, strings.Join(modified, ", "))
	}
	return nil
}

func pending(migrations []Migration, applied map[int]ledgerRow, target int) []Migration {
	var out []Migration
	for _, mig := range migrations {
		if target > 0 && mig.Version > target {
			break
		}
		if _, ok := applied[mig.Version]; !ok {
			out = append(out, mig)
		}
	}
	return out
}

func statusOf(migrations []Migration, applied map[int]ledgerRow) []MigrationStatus {
	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, mig := range migrations {
		s := MigrationStatus{Version: mig.Version, Name: mig.Name}
		if row, ok := applied[mig.Version]; ok {
			at := row.appliedAt
			s.Applied = true
			s.AppliedAt = &at
			s.Modified = strings.TrimSpace(row.checksum) != mig.Checksum
		}
		statuses = append(statuses, s)
	}
	return statuses
}
