package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/uptimed/internal/domain/check"
	"github.com/NordCoder/uptimed/internal/domain/record"
	"github.com/NordCoder/uptimed/internal/logsink"
)

const (
	secondID  = "zyxwvutsrq9876543210"
	invalidID = "invalid0000000000000"
	brokenID  = "broken00000000000000"
)

func seedCycle(t *testing.T, e *env) {
	t.Helper()
	ctx := testContext(t)

	a, b := sampleCheck(testID), sampleCheck(secondID)
	b.LastChecked = 1
	require.NoError(t, e.checks.Create(ctx, &a))
	require.NoError(t, e.checks.Create(ctx, &b))

	noCodes := map[string]any{
		"id": invalidID, "userPhone": testPhone, "protocol": "http",
		"url": "example.com", "method": "get", "timeoutSeconds": 2,
	}
	js, err := json.Marshal(noCodes)
	require.NoError(t, err)
	require.NoError(t, e.store.Create(ctx, record.CollectionChecks, invalidID, js))
	require.NoError(t, e.store.Create(ctx, record.CollectionChecks, brokenID, []byte("{not json")))
}

func TestProbeCycle_SkipsInvalidRecords(t *testing.T) {
	e := newEnv(t)
	seedCycle(t, e)
	p := &stubProber{out: check.ResponseOutcome(200)}

	rep, err := e.usecase(p).ProbeCycle(testContext(t))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{testID, secondID}, p.probed())
	assert.Equal(t, CycleReport{Listed: 4, Probed: 2, Rejected: 2, Up: 2, Alerts: 1}, rep)

	calls := e.notifier.calls()
	require.Len(t, calls, 1, "only the previously probed check alerts")

	_, err = os.Stat(filepath.Join(e.sink.Dir(), invalidID+".log"))
	assert.True(t, os.IsNotExist(err), "rejected checks are not logged")
}

func TestProbeCycle_Bounded(t *testing.T) {
	e := newEnv(t)
	seedCycle(t, e)
	p := &stubProber{out: check.TimeoutOutcome()}
	uc := e.usecase(p)
	uc.MaxInFlight = 1

	rep, err := uc.ProbeCycle(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Probed)
	assert.Equal(t, 2, rep.Down)
	assert.Zero(t, rep.Alerts)
}

func TestProbeCycle_Empty(t *testing.T) {
	e := newEnv(t)
	p := &stubProber{}
	rep, err := e.usecase(p).ProbeCycle(testContext(t))
	require.NoError(t, err)
	assert.Zero(t, rep.Listed)
	assert.Empty(t, p.probed())
}

func TestRunCheck(t *testing.T) {
	e := newEnv(t)
	seedCycle(t, e)
	uc := e.usecase(&stubProber{out: check.ResponseOutcome(500)})

	d, err := uc.RunCheck(testContext(t), secondID)
	require.NoError(t, err)
	assert.Equal(t, check.StateDown, d.State)
	assert.False(t, d.Alert)

	_, err = uc.RunCheck(testContext(t), invalidID)
	assert.Error(t, err)

	_, err = uc.RunCheck(testContext(t), "missing0000000000000")
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestRotateLogs(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.sink.Append("aaa", []byte(`{"n":1}`)))
	require.NoError(t, e.sink.Append("bbb", []byte(`{"n":2}`)))
	require.NoError(t, e.sink.Truncate("bbb"))

	rep, err := e.usecase(&stubProber{}).RotateLogs(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, RotationReport{Streams: 2, Rotated: 1, Skipped: 1}, rep)

	archive := logsink.ArchiveName("aaa", e.clock.t)
	got, err := e.sink.Decompress(archive)
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":1}\n", string(got))

	info, err := os.Stat(filepath.Join(e.sink.Dir(), "aaa.log"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestRotateLogs_FailureKeepsStream(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.sink.Append("aaa", []byte(`{"n":1}`)))
	require.NoError(t, e.sink.Append("ccc", []byte(`{"n":3}`)))

	clash := filepath.Join(e.sink.Dir(), logsink.ArchiveName("aaa", e.clock.t)+logsink.ArchiveSuffix)
	require.NoError(t, os.WriteFile(clash, []byte("taken"), 0o644))

	rep, err := e.usecase(&stubProber{}).RotateLogs(testContext(t))
	require.ErrorIs(t, err, logsink.ErrArchiveExists)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 1, rep.Rotated)

	b, err := os.ReadFile(filepath.Join(e.sink.Dir(), "aaa.log"))
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":1}\n", string(b))
}

func TestRunCheck_KeepsForeignFields(t *testing.T) {
	e := newEnv(t)
	stored := `{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"http",
"url":"  example.com/status ","method":"get","successCodes":[200],"timeoutSeconds":3,
"state":"down","lastChecked":1,"createdBy":"crud","tags":["prod","edge"]}`
	require.NoError(t, e.store.Create(testContext(t), record.CollectionChecks, testID, []byte(stored)))

	d, err := e.usecase(&stubProber{out: check.ResponseOutcome(200)}).RunCheck(testContext(t), testID)
	require.NoError(t, err)
	assert.True(t, d.Persisted)

	b, err := e.store.Read(testContext(t), record.CollectionChecks, testID)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "crud", doc["createdBy"])
	assert.Equal(t, []any{"prod", "edge"}, doc["tags"])
	assert.Equal(t, "  example.com/status ", doc["url"], "stored url is not rewritten")
	assert.Equal(t, "up", doc["state"])
	assert.Equal(t, float64(e.clock.t.UnixMilli()), doc["lastChecked"])
}

func TestRunCheck_SavesUnderListedKey(t *testing.T) {
	e := newEnv(t)
	const key = "listedkey00000000000"
	c := sampleCheck(testID)
	c.LastChecked = 1
	js, err := json.Marshal(c)
	require.NoError(t, err)
	require.NoError(t, e.store.Create(testContext(t), record.CollectionChecks, key, js))

	_, err = e.usecase(&stubProber{out: check.ResponseOutcome(200)}).RunCheck(testContext(t), key)
	require.NoError(t, err)

	raw, err := e.checks.Get(testContext(t), key)
	require.NoError(t, err)
	require.NotNil(t, raw.State)
	assert.Equal(t, "up", *raw.State)

	_, err = e.store.Read(testContext(t), record.CollectionChecks, testID)
	assert.ErrorIs(t, err, record.ErrNotFound, "no record appears under the id field")
}
