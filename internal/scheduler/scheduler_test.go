package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SiteSim/internal/game"
	"SiteSim/internal/metrics"
	"SiteSim/internal/model"
	"SiteSim/internal/plan"
)

func tinyScenario() *model.Scenario {
	return &model.Scenario{
		Name:            "tiny",
		ProjectDuration: 3,
		Bid: model.BidBounds{
			Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(1000), Default: decimal.NewFromInt(100), DefaultDuration: 3,
		},
		Finances: model.Finances{StartBudget: decimal.NewFromFloat(0.5)},
		Workers:  []model.WorkerSpec{{Type: "labour", Cost: decimal.NewFromInt(1)}},
		Activities: []model.Activity{
			{Label: "A", Duration: 1},
		},
	}
}

func newSession(player string) *game.Session {
	return game.NewSession(context.Background(), tinyScenario(), model.Bid{}, game.Options{Player: player})
}

func TestScheduler_RoundWaitsForEveryPlayer(t *testing.T) {
	// Arrange
	m := metrics.NewGameMetricsCollector()
	require.NoError(t, m.Register(prometheus.NewRegistry()))
	s := NewScheduler(context.Background(), m, nil, nil)
	alice, bob := newSession("alice"), newSession("bob")
	s.Add(alice)
	s.Add(bob)

	// Act / Assert
	alice.SetReady(true)
	assert.False(t, s.RunRoundNow())
	assert.Equal(t, 0, alice.Week())

	bob.SetReady(true)
	assert.True(t, s.RunRoundNow())
	assert.Equal(t, 1, alice.Week())
	assert.Equal(t, 1, bob.Week())
	assert.False(t, alice.Ready(), "readiness is cleared after a round")
}

func TestScheduler_PrepareAndCompletion(t *testing.T) {
	prepared := 0
	s := NewScheduler(context.Background(), nil, nil, func(sess *game.Session) {
		prepared++
		sess.SetReady(true)
	})
	sess := newSession("alice")
	s.Add(sess)

	assert.True(t, s.RunRoundNow())
	assert.True(t, sess.HasWon(), "the only activity finishes in one week")
	assert.Equal(t, 1, prepared)

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed after every game ended")
	}
	assert.False(t, s.RunRoundNow(), "nothing left to run")
}

func TestScheduler_RecordsMetrics(t *testing.T) {
	m := metrics.NewGameMetricsCollector()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	s := NewScheduler(context.Background(), m, nil, func(sess *game.Session) { sess.SetReady(true) })
	s.Add(newSession("alice"))

	s.RunRoundNow()

	count, err := testutil.GatherAndCount(reg, "sitesim_game_weeks_advanced_total", "sitesim_game_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestScheduler_RegisterAllRejectsBadCron(t *testing.T) {
	s := NewScheduler(context.Background(), nil, nil, nil)
	assert.Error(t, s.RegisterAll("not a cron"))
	assert.NoError(t, s.RegisterAll("*/5 * * * * *"))
}

type captureNotifier struct {
	texts []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.texts = append(c.texts, text)
	return nil
}

func TestScheduler_SendsReports(t *testing.T) {
	n := &captureNotifier{}
	s := NewScheduler(context.Background(), nil, n, func(sess *game.Session) { sess.SetReady(true) })
	s.Add(newSession("alice"))

	require.True(t, s.RunRoundNow())

	require.Len(t, n.texts, 2, "weekly report and outcome")
	assert.Contains(t, n.texts[0], "alice")
	assert.Contains(t, n.texts[1], "alice")
}

func TestScheduler_HandleCommand(t *testing.T) {
	s := NewScheduler(context.Background(), nil, &captureNotifier{}, nil)
	alice := newSession("alice")
	s.Add(alice)

	t.Run("ready", func(t *testing.T) {
		assert.Equal(t, "alice is ready for week 1", s.HandleCommand("/ready alice"))
		assert.True(t, alice.Ready())
	})

	t.Run("wait", func(t *testing.T) {
		assert.Equal(t, "alice is not ready", s.HandleCommand("/wait alice"))
		assert.False(t, alice.Ready())
	})

	t.Run("unknown player", func(t *testing.T) {
		assert.Equal(t, "unknown player bob", s.HandleCommand("/ready bob"))
	})

	t.Run("status", func(t *testing.T) {
		assert.Contains(t, s.HandleCommand("/status"), "alice")
	})

	t.Run("help", func(t *testing.T) {
		assert.Contains(t, s.HandleCommand("hello"), "/ready <player>")
		assert.Empty(t, s.HandleCommand("   "))
	})
}

func loanScenario() *model.Scenario {
	sc := tinyScenario()
	sc.ProjectDuration = 5
	sc.Finances.LoansEnabled = true
	sc.Finances.LoanInterest = decimal.NewFromFloat(0.01)
	sc.Activities = []model.Activity{
		{Label: "A", Duration: 1, Requirements: model.Requirements{Workers: map[model.WorkerType]int{"labour": 1}}},
	}
	return sc
}

func TestScheduler_BlockedRoundsApplyPlanOnce(t *testing.T) {
	// Arrange
	script := &plan.Plan{Player: "alice", Weeks: map[int]plan.Week{
		0: {Loan: 100000},
		1: {Repay: "50%"},
	}}
	applied, rejected := 0, 0
	s := NewScheduler(context.Background(), nil, &captureNotifier{}, func(sess *game.Session) {
		if sess.Player != script.Player {
			return
		}
		n, ok, err := script.ApplyOnce(sess)
		require.NoError(t, err)
		if ok {
			applied++
		}
		rejected += n
		sess.SetReady(true)
	})
	alice := game.NewSession(context.Background(), loanScenario(), model.Bid{}, game.Options{Player: "alice"})
	bob := game.NewSession(context.Background(), loanScenario(), model.Bid{}, game.Options{Player: "bob"})
	s.Add(alice)
	s.Add(bob)

	// Act: week 0 waits for bob once
	assert.False(t, s.RunRoundNow())
	s.HandleCommand("/ready bob")
	require.True(t, s.RunRoundNow())

	// week 1 waits for bob twice
	assert.False(t, s.RunRoundNow())
	assert.False(t, s.RunRoundNow())

	// Assert: 100000 paid out at week 1 plus 1000 interest, half repaid at week 2
	assert.True(t, decimal.NewFromInt(50500).Equal(alice.Finances(2).LoanRepay), "got %s", alice.Finances(2).LoanRepay)
	assert.True(t, decimal.NewFromInt(50500).Equal(alice.LoanOutstanding(2)), "got %s", alice.LoanOutstanding(2))

	s.HandleCommand("/ready bob")
	require.True(t, s.RunRoundNow())
	assert.Equal(t, 2, alice.Week())
	assert.True(t, decimal.NewFromInt(50500).Equal(alice.Finances(2).LoanRepay))
	assert.Equal(t, 2, applied, "each plan week is applied once")
	assert.Zero(t, rejected)
}

type blockingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingNotifier) SendWithRetry(ctx context.Context, _ string, _ int) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestScheduler_CommandsAnswerWhileReportsSend(t *testing.T) {
	n := &blockingNotifier{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewScheduler(context.Background(), nil, n, func(sess *game.Session) { sess.SetReady(true) })
	s.Add(game.NewSession(context.Background(), loanScenario(), model.Bid{}, game.Options{Player: "alice"}))

	done := make(chan bool)
	go func() { done <- s.RunRoundNow() }()

	select {
	case <-n.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("report never sent")
	}

	replies := make(chan string)
	go func() { replies <- s.HandleCommand("/status") }()
	select {
	case reply := <-replies:
		assert.Contains(t, reply, "alice")
	case <-time.After(5 * time.Second):
		t.Fatal("command blocked behind report delivery")
	}

	close(n.release)
	assert.True(t, <-done)
}
