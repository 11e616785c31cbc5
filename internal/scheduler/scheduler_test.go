package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PillarReport/internal/collector"
	"PillarReport/internal/recorder"
)

func newTestScheduler(w *fakeWriter) *Scheduler {
	r, _ := newTestRunner(collector.NewMockSource(), w)
	return NewScheduler(context.Background(), r, []string{"IBM", "AAPL"}, zerolog.Nop())
}

func TestScheduler_RunNow(t *testing.T) {
	w := &fakeWriter{}
	s := newTestScheduler(w)

	summary, err := s.RunNow()
	require.NoError(t, err)
	assert.Len(t, summary.Results, 2)
	assert.Equal(t, []string{"IBM", "AAPL"}, w.written)
}

func TestScheduler_RejectsOverlappingRuns(t *testing.T) {
	s := newTestScheduler(&fakeWriter{})
	s.running.Lock()
	defer s.running.Unlock()

	_, err := s.RunNow()
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Equal(t, ErrRunInProgress.Error(), s.HandleCommand(context.Background(), "/run"))
}

func TestScheduler_Register(t *testing.T) {
	s := newTestScheduler(&fakeWriter{})
	assert.Error(t, s.Register("0 6 * * *"))
	assert.NoError(t, s.Register("0 0 6 * * 1-5"))
	assert.NoError(t, s.Register("@daily"))
	assert.Len(t, s.Cron.Entries(), 2)
}

func TestScheduler_CronFires(t *testing.T) {
	w := &fakeWriter{}
	s := newTestScheduler(w)
	require.NoError(t, s.Register("* * * * * *"))

	s.Start()
	assert.Eventually(t, func() bool { return s.Runner.Last() != nil }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestScheduler_HandleCommand(t *testing.T) {
	w := &fakeWriter{}
	s := newTestScheduler(w)
	ctx := context.Background()

	assert.Equal(t, "No run has finished yet.", s.HandleCommand(ctx, "/status"))
	assert.Contains(t, s.HandleCommand(ctx, "/help"), "/report")
	assert.Contains(t, s.HandleCommand(ctx, "/report"), "Usage")

	reply := s.HandleCommand(ctx, "/report msft  ibm")
	assert.Contains(t, reply, "Written: 2/2")
	assert.Equal(t, []string{"MSFT", "IBM"}, w.written)

	assert.Contains(t, s.HandleCommand(ctx, "/status"), s.Runner.Last().RunID)
}

func TestScheduler_HandleCommand_WithNotifier(t *testing.T) {
	s := newTestScheduler(&fakeWriter{})
	n := &fakeNotifier{}
	s.Runner.Notifier = n

	assert.Empty(t, s.HandleCommand(context.Background(), "/run"))
	assert.Len(t, n.messages, 1)
}

func TestScheduler_HistoryCommand(t *testing.T) {
	s := newTestScheduler(&fakeWriter{})
	ctx := context.Background()
	assert.Equal(t, "Run history is not enabled.", s.HandleCommand(ctx, "/history"))

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close()
	s.History = rec
	s.Runner.Recorder = rec

	assert.Equal(t, "No runs recorded yet.", s.HandleCommand(ctx, "/history"))
	s.HandleCommand(ctx, "/report IBM")
	assert.Contains(t, s.HandleCommand(ctx, "/history"), "1/1 written (ok)")
}
