package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sumire/bugtracker/internal/domain"
)

const bugColumns = `id, title, description, status, priority, created_at`

const postgresSchema = `CREATE TABLE IF NOT EXISTS bugs (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL CONSTRAINT bugs_title_check CHECK (char_length(title) <= 100),
	description TEXT NOT NULL CONSTRAINT bugs_description_check CHECK (char_length(description) <= 500),
	status      TEXT NOT NULL DEFAULT 'open'
	            CONSTRAINT bugs_status_check CHECK (status IN ('open', 'in-progress', 'resolved')),
	priority    TEXT NOT NULL DEFAULT 'medium'
	            CONSTRAINT bugs_priority_check CHECK (priority IN ('low', 'medium', 'high')),
	created_at  TIMESTAMPTZ NOT NULL
)`

const sqliteSchema = `CREATE TABLE IF NOT EXISTS bugs (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL CONSTRAINT bugs_title_check CHECK (length(title) <= 100),
	description TEXT NOT NULL CONSTRAINT bugs_description_check CHECK (length(description) <= 500),
	status      TEXT NOT NULL DEFAULT 'open'
	            CONSTRAINT bugs_status_check CHECK (status IN ('open', 'in-progress', 'resolved')),
	priority    TEXT NOT NULL DEFAULT 'medium'
	            CONSTRAINT bugs_priority_check CHECK (priority IN ('low', 'medium', 'high')),
	created_at  TIMESTAMP NOT NULL
)`

const createdAtIndex = `CREATE INDEX IF NOT EXISTS bugs_created_at_idx ON bugs (created_at DESC)`

// SQLBugRepository stores bugs in a relational table. It runs against Postgres
// (driver "pgx") and SQLite (driver "sqlite"); queries are written with "?"
// placeholders and rebound for the connected driver. Timestamps are returned
// in UTC whatever the driver's location.
type SQLBugRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLBugRepository creates the bugs table if needed and returns a repository over db.
func NewSQLBugRepository(ctx context.Context, db *sqlx.DB) (*SQLBugRepository, error) {
	ddl := postgresSchema
	if db.DriverName() == "sqlite" {
		ddl = sqliteSchema
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create bugs table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createdAtIndex); err != nil {
		return nil, fmt.Errorf("create bugs index: %w", err)
	}
	return &SQLBugRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// List returns all bugs, newest first.
func (r *SQLBugRepository) List(ctx context.Context) ([]domain.Bug, error) {
	bugs := []domain.Bug{}
	err := r.db.SelectContext(ctx, &bugs,
		`SELECT `+bugColumns+` FROM bugs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bugs: %w", classifySQLError(err))
	}
	for i := range bugs {
		bugs[i].CreatedAt = bugs[i].CreatedAt.UTC()
	}
	return bugs, nil
}

// Insert stores a new bug, assigning its ID and creation time.
func (r *SQLBugRepository) Insert(ctx context.Context, bug domain.Bug) (*domain.Bug, error) {
	if err := conform(&bug); err != nil {
		return nil, err
	}
	bug.ID = uuid.New().String()
	bug.CreatedAt = r.now().UTC()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO bugs (`+bugColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		bug.ID, bug.Title, bug.Description, string(bug.Status), string(bug.Priority), bug.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bug: %w", classifySQLError(err))
	}
	return &bug, nil
}

// Get retrieves a bug by its ID.
func (r *SQLBugRepository) Get(ctx context.Context, id string) (*domain.Bug, error) {
	return r.get(ctx, r.db, id)
}

func (r *SQLBugRepository) get(ctx context.Context, q sqlx.QueryerContext, id string) (*domain.Bug, error) {
	var bug domain.Bug
	err := sqlx.GetContext(ctx, q, &bug, r.db.Rebind(
		`SELECT `+bugColumns+` FROM bugs WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find bug by id %s: %w", id, err)
	}
	bug.CreatedAt = bug.CreatedAt.UTC()
	return &bug, nil
}

// Update merges the input into the stored bug inside a transaction and returns the result.
func (r *SQLBugRepository) Update(ctx context.Context, id string, in domain.BugInput) (_ *domain.Bug, retErr error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	stored, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	updated := stored.Apply(in)
	if err := conform(&updated); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, r.db.Rebind(
		`UPDATE bugs SET title = ?, description = ?, status = ?, priority = ? WHERE id = ?`),
		updated.Title, updated.Description, string(updated.Status), string(updated.Priority), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update bug %s: %w", id, classifySQLError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return &updated, nil
}

// Delete removes a bug and returns the removed record.
func (r *SQLBugRepository) Delete(ctx context.Context, id string) (*domain.Bug, error) {
	var bug domain.Bug
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`DELETE FROM bugs WHERE id = ? RETURNING `+bugColumns), id,
	).StructScan(&bug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete bug %s: %w", id, classifySQLError(err))
	}
	bug.CreatedAt = bug.CreatedAt.UTC()
	return &bug, nil
}

// Close closes the underlying database handle.
func (r *SQLBugRepository) Close() error {
	return r.db.Close()
}
