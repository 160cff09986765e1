package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/uptimed/internal/domain/record"
)

var _ record.Store = (*RecordRepo)(nil)

// RecordRepo stores JSON records in the records table, keyed by
// (collection, id). Row-level atomicity serializes writes to one id.
type RecordRepo struct {
	db *DB
}

func NewRecordRepo(db *DB) *RecordRepo { return &RecordRepo{db: db} }

const (
	qList = `
SELECT id FROM records
WHERE collection = $1
ORDER BY id;
`

	qRead = `
SELECT body FROM records
WHERE collection = $1 AND id = $2;
`

	qCreate = `
INSERT INTO records (collection, id, body)
VALUES ($1, $2, $3::jsonb);
`

	qUpdate = `
UPDATE records
SET body = $3::jsonb, updated_at = NOW()
WHERE collection = $1 AND id = $2;
`

	qReadForUpdate = `
SELECT body FROM records
WHERE collection = $1 AND id = $2
FOR UPDATE;
`

	qDelete = `DELETE FROM records WHERE collection = $1 AND id = $2;`
)

func (r *RecordRepo) List(ctx context.Context, collection string) ([]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qList, collection)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ids, nil
}

func (r *RecordRepo) Read(ctx context.Context, collection, id string) ([]byte, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var body []byte
	if err := r.db.Pool.QueryRow(ctx, qRead, collection, id).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	return body, nil
}

func (r *RecordRepo) Create(ctx context.Context, collection, id string, data []byte) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qCreate, collection, id, string(data)); err != nil {
		if isUniqueViolation(err) {
			return record.ErrConflict
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (r *RecordRepo) Update(ctx context.Context, collection, id string, data []byte) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qUpdate, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return record.ErrNotFound
	}
	return nil
}

// Modify locks the row for the length of a transaction, so concurrent
// modifications of one record apply in turn.
func (r *RecordRepo) Modify(ctx context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var body []byte
		if err := tx.QueryRow(ctx, qReadForUpdate, collection, id).Scan(&body); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return record.ErrNotFound
			}
			return fmt.Errorf("lock record: %w", err)
		}
		next, err := fn(body)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, qUpdate, collection, id, string(next)); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		return nil
	})
}

func (r *RecordRepo) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qDelete, collection, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return record.ErrNotFound
	}
	return nil
}
