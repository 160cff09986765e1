package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/uptimed/internal/domain/check"
	"github.com/NordCoder/uptimed/internal/logsink"
	"github.com/NordCoder/uptimed/internal/repository/filestore"
	"github.com/NordCoder/uptimed/internal/services/monitor/repo"
)

const (
	testID    = "abcdefghij0123456789"
	testPhone = "5551234567"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type alertCall struct{ to, message string }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []alertCall
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, to, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, alertCall{to, message})
	return n.err
}

func (n *fakeNotifier) calls() []alertCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]alertCall(nil), n.sent...)
}

// stubProber answers every probe with a fixed outcome and remembers ids.
type stubProber struct {
	mu  sync.Mutex
	out check.Outcome
	ids []string
}

func (p *stubProber) Probe(_ context.Context, c *check.Check) check.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, c.ID)
	return p.out
}

func (p *stubProber) probed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ids...)
}

type failingSaver struct{}

func (failingSaver) SaveOutcome(context.Context, string, check.State, int64) error {
	return errors.New("disk full")
}

type env struct {
	store    *filestore.Store
	checks   repo.CheckRepo
	sink     *logsink.Sink
	notifier *fakeNotifier
	clock    fixedClock
	proc     *Processor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	sink, err := logsink.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	e := &env{
		store:    st,
		checks:   repo.CheckRepo{R: st},
		sink:     sink,
		notifier: &fakeNotifier{},
		clock:    fixedClock{t: time.UnixMilli(1_700_000_000_000)},
	}
	e.proc = &Processor{
		Checks:   e.checks,
		Logs:     e.sink,
		Notifier: e.notifier,
		Clock:    e.clock,
		Log:      zap.NewNop(),
	}
	return e
}

func (e *env) usecase(p Prober) *Usecase {
	return &Usecase{
		Checks:    e.checks,
		Prober:    p,
		Processor: e.proc,
		Logs:      e.sink,
		Clock:     e.clock,
		Log:       zap.NewNop(),
	}
}

func sampleCheck(id string) check.Check {
	return check.Check{
		ID:             id,
		UserPhone:      testPhone,
		Protocol:       "http",
		URL:            "example.com/status",
		Method:         "get",
		SuccessCodes:   []int{200},
		TimeoutSeconds: 3,
		State:          check.StateDown,
	}
}

// testContext stands in for t.Context (Go 1.24+): a context canceled when the test ends.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
