package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/sumire/bugtracker/internal/domain"
)

var boltBucketBugs = []byte("bugs") // key: ID -> Bug JSON

// BoltBugRepository stores bugs as JSON documents in a single bbolt bucket.
type BoltBugRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltBugRepository opens (or creates) the bolt file at path.
func NewBoltBugRepository(path string) (*BoltBugRepository, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucketBugs)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bugs bucket: %w", err)
	}

	return &BoltBugRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// List returns all bugs, newest first.
func (r *BoltBugRepository) List(ctx context.Context) ([]domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bugs := []domain.Bug{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucketBugs).ForEach(func(k, v []byte) error {
			var bug domain.Bug
			if err := json.Unmarshal(v, &bug); err != nil {
				return fmt.Errorf("decode bug %s: %w", k, err)
			}
			bugs = append(bugs, bug)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list bugs: %w", err)
	}

	sort.SliceStable(bugs, func(i, j int) bool {
		return bugs[i].CreatedAt.After(bugs[j].CreatedAt)
	})
	return bugs, nil
}

// Insert stores a new bug, assigning its ID and creation time.
func (r *BoltBugRepository) Insert(ctx context.Context, bug domain.Bug) (*domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := conform(&bug); err != nil {
		return nil, err
	}
	bug.ID = uuid.New().String()
	bug.CreatedAt = r.now()

	data, err := json.Marshal(&bug)
	if err != nil {
		return nil, fmt.Errorf("encode bug: %w", err)
	}

	err = r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucketBugs)
		if b.Get([]byte(bug.ID)) != nil {
			return fmt.Errorf("%w: id %s", domain.ErrDuplicate, bug.ID)
		}
		return b.Put([]byte(bug.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

// Get retrieves a bug by its ID.
func (r *BoltBugRepository) Get(ctx context.Context, id string) (*domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bug domain.Bug
	err := r.db.View(func(tx *bbolt.Tx) error {
		return readBug(tx.Bucket(boltBucketBugs), id, &bug)
	})
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

// Update merges the input into the stored bug and returns the result.
func (r *BoltBugRepository) Update(ctx context.Context, id string, in domain.BugInput) (*domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated domain.Bug
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucketBugs)

		var stored domain.Bug
		if err := readBug(b, id, &stored); err != nil {
			return err
		}
		updated = stored.Apply(in)
		if err := conform(&updated); err != nil {
			return err
		}

		data, err := json.Marshal(&updated)
		if err != nil {
			return fmt.Errorf("encode bug: %w", err)
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a bug and returns the removed record.
func (r *BoltBugRepository) Delete(ctx context.Context, id string) (*domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bug domain.Bug
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucketBugs)
		if err := readBug(b, id, &bug); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

// Close closes the bolt file.
func (r *BoltBugRepository) Close() error {
	return r.db.Close()
}

func readBug(b *bbolt.Bucket, id string, bug *domain.Bug) error {
	data := b.Get([]byte(id))
	if data == nil {
		return domain.ErrNotFound
	}
	if err := json.Unmarshal(data, bug); err != nil {
		return fmt.Errorf("decode bug %s: %w", id, err)
	}
	return nil
}
