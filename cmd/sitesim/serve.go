package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"SiteSim/internal/game"
	"SiteSim/internal/metrics"
	"SiteSim/internal/model"
	"SiteSim/internal/notifier"
	"SiteSim/internal/plan"
	"SiteSim/internal/scheduler"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run synchronized rounds for several players on a cron schedule",
		RunE:  runServe,
	}
	cmd.Flags().StringArray("plan", nil, "player plan as player=path; players without a plan ready themselves over chat")
	cmd.Flags().StringArray("player", nil, "player driven only by chat commands")
	cmd.Flags().Bool("record", true, "mirror the games into the configured database")
	return cmd
}

func parsePlans(specs []string) (map[string]*plan.Plan, error) {
	plans := make(map[string]*plan.Plan, len(specs))
	for _, spec := range specs {
		player, path, ok := strings.Cut(spec, "=")
		if !ok || player == "" || path == "" {
			return nil, fmt.Errorf("invalid --plan %q, want player=path", spec)
		}
		p, err := plan.Load(path)
		if err != nil {
			return nil, err
		}
		p.Player = player
		plans[player] = p
	}
	return plans, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, sc := loadScenario(cmd)

	planSpecs, _ := cmd.Flags().GetStringArray("plan")
	players, _ := cmd.Flags().GetStringArray("player")
	record, _ := cmd.Flags().GetBool("record")

	plans, err := parsePlans(planSpecs)
	if err != nil {
		return err
	}
	if len(plans) == 0 && len(players) == 0 {
		return errors.New("no players: pass --plan player=path or --player name")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := openRecorder(ctx, cfg, record)
	defer closeRecorder(rec)

	m := metrics.NewGameMetricsCollector()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	var n notifier.Notifier = notifier.NewLogNotifier()
	var tn *notifier.TelegramNotifier
	if cfg.Notify.TelegramBotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Notify.TelegramBotToken, cfg.Notify.TelegramChatID, cfg.Notify.Proxy)
		n = tn
	}

	// Scripted players apply their week once and report ready; chat
	// players ready themselves with /ready. Blocked rounds prepare again.
	sched := scheduler.NewScheduler(ctx, m, n, func(s *game.Session) {
		p, ok := plans[s.Player]
		if !ok {
			return
		}
		if _, _, err := p.ApplyOnce(s); err != nil {
			log.Printf("[ERROR] plan %s: %v", s.Player, err)
		}
		s.SetReady(true)
	})

	// Every player shares one game ID so their records group together.
	names := make([]string, 0, len(plans))
	for name := range plans {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, player := range players {
		if _, ok := plans[player]; !ok {
			names = append(names, player)
		}
	}
	gameID := ""
	for _, player := range names {
		bid := model.Bid{}
		if p, ok := plans[player]; ok {
			bid = p.SubmittedBid()
		}
		sess := game.NewSession(ctx, sc, bid, game.Options{
			GameID: gameID, Player: player, Recorder: rec, Synchronized: true,
		})
		gameID = sess.ID
		sched.Add(sess)
	}

	if err := sched.RegisterAll(cfg.Schedule.RoundCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
	log.Printf("[INFO] serving metrics on %s", cfg.Metrics.Addr)
	log.Printf("[INFO] %s is running, round schedule %q. Press Ctrl+C to stop.", describe(sc), cfg.Schedule.RoundCron)

	// Wait for shutdown signal or the end of every game
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-sched.Done():
		log.Println("[INFO] every game is over, stopping...")
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] metrics server shutdown: %v", err)
	}
	log.Println("[INFO] sitesim stopped")
	return nil
}
