package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"SiteSim/internal/fund"
	"SiteSim/internal/game"
	"SiteSim/internal/plan"
	"SiteSim/internal/report"
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one scripted game to the end",
		RunE:  runPlay,
	}
	cmd.Flags().String("plan", "", "path to the player plan (YAML)")
	cmd.Flags().String("statement", "", "write the finance statement as JSON to this path")
	cmd.Flags().Bool("record", false, "mirror the game into the configured database")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, sc := loadScenario(cmd)

	planPath, _ := cmd.Flags().GetString("plan")
	statementPath, _ := cmd.Flags().GetString("statement")
	record, _ := cmd.Flags().GetBool("record")

	p, err := plan.Load(planPath)
	if err != nil {
		return err
	}

	rec := openRecorder(ctx, cfg, record)
	defer closeRecorder(rec)

	sess := game.NewSession(ctx, sc, p.SubmittedBid(), game.Options{Player: p.Player, Recorder: rec})
	log.Printf("[INFO] game %s started for %s (%s)", sess.ID, sess.Player, describe(sc))

	out := cmd.OutOrStdout()
	for !sess.IsOver() {
		if _, err := p.Apply(sess); err != nil {
			return fmt.Errorf("apply plan week %d: %w", sess.Week(), err)
		}
		week := sess.Week()
		sess.AdvanceWeek()
		fmt.Fprintln(out, report.FormatWeeklyReport(sess.Snapshot(sess.Week())))
		fmt.Fprintln(out, report.FormatFinanceStatus(sess.Finances(week)))
	}

	st := sess.Statement()
	fmt.Fprint(out, report.FormatOutcome(st))
	if statementPath != "" {
		if err := fund.SaveStatement(statementPath, st); err != nil {
			return err
		}
		if _, err := fund.LoadStatement(statementPath); err != nil {
			return fmt.Errorf("verify statement: %w", err)
		}
		log.Printf("[INFO] statement written to %s", statementPath)
	}
	return nil
}
