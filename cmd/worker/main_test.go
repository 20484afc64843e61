package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/token-ledger/backend/internal/config"
	"go.uber.org/zap/zaptest"
)

type stubSender struct {
	calls  int
	window time.Duration
	err    error
}

func (s *stubSender) SendReminders(_ context.Context, window time.Duration) (int, error) {
	s.calls++
	s.window = window
	return 2, s.err
}

func TestRunReminders_UsesConfiguredWindow(t *testing.T) {
	sender := &stubSender{}
	cfg := &config.Config{ReminderWindow: 48 * time.Hour}

	runReminders(context.Background(), sender, cfg, zaptest.NewLogger(t))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, 48*time.Hour, sender.window)

	sender.err = errors.New("storage unavailable")
	runReminders(context.Background(), sender, cfg, zaptest.NewLogger(t))
	assert.Equal(t, 2, sender.calls)
}

func TestNewScheduler_RegistersReminderJob(t *testing.T) {
	cfg := &config.Config{ReminderInterval: 15 * time.Minute, ReminderWindow: 72 * time.Hour}
	clock := clockwork.NewFakeClock()

	sched, err := newScheduler(context.Background(), clock, &stubSender{}, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer sched.Shutdown()

	jobs := sched.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "installment-reminders", jobs[0].Name())
}
