package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"SiteSim/internal/game"
	"SiteSim/internal/metrics"
	"SiteSim/internal/notifier"
	"SiteSim/internal/report"
)

// PrepareFunc runs for every running session before a round checks
// readiness, e.g. to apply a scripted player's commands.
type PrepareFunc func(s *game.Session)

// Scheduler advances synchronized sessions in rounds. A round only runs
// when every running session is ready.
type Scheduler struct {
	Cron     *cron.Cron
	Metrics  *metrics.GameMetricsCollector
	Notifier notifier.Notifier
	Prepare  PrepareFunc
	Ctx      context.Context

	mu       sync.Mutex
	sessions []*game.Session
	done     chan struct{}
	closed   bool
}

// NewScheduler creates a new Scheduler. A nil notifier sends reports to the log.
func NewScheduler(ctx context.Context, m *metrics.GameMetricsCollector, n notifier.Notifier, prepare PrepareFunc) *Scheduler {
	if n == nil {
		n = notifier.NewLogNotifier()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Metrics:  m,
		Notifier: n,
		Prepare:  prepare,
		Ctx:      ctx,
		done:     make(chan struct{}),
	}
}

// Add registers a session with the scheduler.
func (s *Scheduler) Add(sess *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, sess)
	log.Printf("[INFO] session %s joined (player %s)", sess.ID, sess.Player)
}

// RegisterAll registers the round task.
func (s *Scheduler) RegisterAll(roundCron string) error {
	if _, err := s.Cron.AddFunc(roundCron, func() { s.RunRoundNow() }); err != nil {
		return fmt.Errorf("register round task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Done is closed once every registered session is over.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// RunRoundNow executes one round immediately. It reports whether the
// sessions were advanced. Reports are sent outside the lock.
func (s *Scheduler) RunRoundNow() bool {
	advanced, outbox := s.runRound()
	for _, text := range outbox {
		s.trySend(text)
	}
	if advanced {
		s.mu.Lock()
		s.closeIfFinished()
		s.mu.Unlock()
	}
	return advanced
}

func (s *Scheduler) runRound() (bool, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Ctx.Err() != nil {
		return false, nil
	}

	running := make([]*game.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if !sess.IsOver() {
			running = append(running, sess)
		}
	}
	if len(running) == 0 {
		return false, nil
	}

	if s.Prepare != nil {
		for _, sess := range running {
			s.Prepare(sess)
		}
	}

	var waiting []string
	for _, sess := range running {
		if !sess.Ready() {
			waiting = append(waiting, sess.Player)
		}
	}
	if len(waiting) > 0 {
		log.Printf("[INFO] round blocked, waiting for %v", waiting)
		if s.Metrics != nil {
			s.Metrics.RecordBlockedRound()
		}
		return false, nil
	}

	var outbox []string
	for _, sess := range running {
		week := sess.Week()
		sess.AdvanceWeek()
		outbox = append(outbox, report.FormatWeeklyReport(sess.Snapshot(sess.Week()))+"\n"+report.FormatFinanceStatus(sess.Finances(week)))

		if s.Metrics != nil {
			s.Metrics.RecordWeek(sess.Player, sess.Finances(sess.Week()).Balance.InexactFloat64(), sess.TotalProgress(sess.Week()))
			if sess.IsOver() {
				s.Metrics.RecordOutcome(sess.HasWon())
			}
		}
		if sess.IsOver() {
			outbox = append(outbox, report.FormatOutcome(sess.Statement()))
		}
	}

	return true, outbox
}

func (s *Scheduler) closeIfFinished() {
	if s.closed {
		return
	}
	for _, sess := range s.sessions {
		if !sess.IsOver() {
			return
		}
	}
	s.closed = true
	close(s.done)
}

// HandleCommand processes a player command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch fields[0] {
	case "/ready", "/wait":
		if len(fields) != 2 {
			return "usage: " + fields[0] + " <player>"
		}
		sess := s.find(fields[1])
		if sess == nil {
			return fmt.Sprintf("unknown player %s", fields[1])
		}
		if sess.IsOver() {
			return fmt.Sprintf("game of %s is over", sess.Player)
		}
		ready := fields[0] == "/ready"
		sess.SetReady(ready)
		if ready {
			return fmt.Sprintf("%s is ready for week %d", sess.Player, sess.Week()+1)
		}
		return fmt.Sprintf("%s is not ready", sess.Player)
	case "/status":
		var b strings.Builder
		for _, sess := range s.sessions {
			b.WriteString(report.FormatWeeklyReport(sess.Snapshot(sess.Week())))
			b.WriteString("\n")
		}
		return b.String()
	default:
		return "commands:\n  /ready <player>\n  /wait <player>\n  /status"
	}
}

func (s *Scheduler) find(player string) *game.Session {
	for _, sess := range s.sessions {
		if sess.Player == player {
			return sess
		}
	}
	return nil
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
