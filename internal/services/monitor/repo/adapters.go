package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/NordCoder/uptimed/internal/domain/check"
	"github.com/NordCoder/uptimed/internal/domain/record"
)

// CheckRepo maps the checks collection of a record store to check types.
type CheckRepo struct{ R record.Store }

func (a CheckRepo) ListIDs(ctx context.Context) ([]string, error) {
	return a.R.List(ctx, record.CollectionChecks)
}

// Get decodes the stored record without validating it. A record that is not
// a JSON object of the expected shape is reported as a rejection.
func (a CheckRepo) Get(ctx context.Context, id string) (*check.RawCheck, error) {
	b, err := a.R.Read(ctx, record.CollectionChecks, id)
	if err != nil {
		return nil, err
	}
	var raw check.RawCheck
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, &check.Rejection{Field: "record", Reason: err.Error()}
	}
	return &raw, nil
}

// SaveOutcome sets state and lastChecked on the record stored under key and
// leaves every other field exactly as stored.
func (a CheckRepo) SaveOutcome(ctx context.Context, key string, state check.State, lastChecked int64) error {
	return a.R.Modify(ctx, record.CollectionChecks, key, func(cur []byte) ([]byte, error) {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(cur, &doc); err != nil || doc == nil {
			return nil, fmt.Errorf("check %s: stored record is not a JSON object", key)
		}
		st, err := json.Marshal(state)
		if err != nil {
			return nil, err
		}
		doc["state"] = st
		doc["lastChecked"] = json.RawMessage(strconv.FormatInt(lastChecked, 10))
		return json.Marshal(doc)
	})
}

// Create stores a new check record. Used by seeding tools and tests; the
// CRUD surface lives outside this service.
func (a CheckRepo) Create(ctx context.Context, c *check.Check) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal check %s: %w", c.ID, err)
	}
	return a.R.Create(ctx, record.CollectionChecks, c.ID, b)
}
