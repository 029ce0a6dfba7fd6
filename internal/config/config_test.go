package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SiteSim/internal/model"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(filepath.Join("testdata", "valid.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestLoad(t *testing.T) {
	t.Run("valid config loads with defaults", func(t *testing.T) {
		cfg := loadValid(t)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "0 * * * * *", cfg.Schedule.RoundCron)
		assert.Equal(t, ":9090", cfg.Metrics.Addr)
		assert.Equal(t, "data/sitesim.db", cfg.Database.SQLitePath)
		assert.Equal(t, 8, cfg.Game.Bid.DefaultDuration, "defaults to the project duration")
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "*/10 * * * * *", cfg.Schedule.RoundCron)
		assert.Error(t, cfg.Validate(), "an empty game section is invalid")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeTempConfig(t, "game: [\n"))
		assert.Error(t, err)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("SITESIM_ROUND_CRON", "*/1 * * * * *")
		t.Setenv("SITESIM_SQLITE_PATH", "/tmp/x.db")
		t.Setenv("SITESIM_METRICS_ADDR", ":9999")
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("TELEGRAM_CHAT_ID", "42")

		cfg := loadValid(t)
		assert.Equal(t, "*/1 * * * * *", cfg.Schedule.RoundCron)
		assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
		assert.Equal(t, ":9999", cfg.Metrics.Addr)
		assert.Equal(t, "token", cfg.Notify.TelegramBotToken)
		assert.Equal(t, "42", cfg.Notify.TelegramChatID)
	})
}

func TestValidate_ScenarioErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(g *GameConfig)
		reason string
	}{
		{"unknown prerequisite", func(g *GameConfig) {
			g.Activities[1].Requirements.Activities = []string{"Z"}
		}, `unknown prerequisite activity "Z"`},
		{"unknown equipment", func(g *GameConfig) {
			g.Activities[1].Requirements.Equipment = []string{"crane"}
		}, `unknown equipment "crane"`},
		{"unknown worker type", func(g *GameConfig) {
			g.Activities[0].Requirements.Workers = map[string]int{"welder": 1}
		}, `unknown worker type "welder"`},
		{"dependency cycle", func(g *GameConfig) {
			g.Activities[0].Requirements.Activities = []string{"B"}
		}, "dependency cycle"},
		{"duplicate label", func(g *GameConfig) {
			g.Activities[2].Label = "A"
		}, `duplicate label "A"`},
		{"unknown milestone", func(g *GameConfig) {
			g.Payments.MilestoneActivity = "Q"
		}, `unknown activity "Q"`},
		{"express without equipment", func(g *GameConfig) {
			g.Activities[0].ExpressDuration = 1
		}, "express_duration requires equipment"},
		{"event after the project", func(g *GameConfig) {
			ev := g.Events["rain"]
			ev.Week = 9
			g.Events["rain"] = ev
		}, "after the project duration"},
		{"effect on unknown activity", func(g *GameConfig) {
			g.Events["bonus"].Choices["accept"].Effects[0].ActivityLabels = []string{"X"}
		}, `unknown activity "X"`},
		{"effect without targets", func(g *GameConfig) {
			g.Events["rain"].Effects[0].ActivityLabels = nil
		}, "activity_labels required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := loadValid(t)
			tc.mutate(&cfg.Game)

			err := cfg.Validate()
			require.Error(t, err)
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, err.Error(), tc.reason)

			_, err = cfg.Game.Scenario()
			assert.Error(t, err)
		})
	}
}

func TestValidate_StructTags(t *testing.T) {
	cfg := loadValid(t)
	cfg.Game.Bid.Default = 2000000

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Bid.Default"), err.Error())
}

func TestScenario_Conversion(t *testing.T) {
	cfg := loadValid(t)
	sc, err := cfg.Game.Scenario()
	require.NoError(t, err)

	assert.Equal(t, "small", sc.Name)
	assert.True(t, decimal.NewFromInt(850000).Equal(sc.Bid.Default))
	assert.Equal(t, 8, sc.Bid.DefaultDuration)
	assert.True(t, decimal.NewFromFloat(0.2).Equal(sc.Finances.StartBudget))
	assert.True(t, sc.Finances.LoansEnabled)
	assert.Equal(t, "A", sc.Finances.MilestoneActivity)

	require.Len(t, sc.Workers, 2)
	assert.Equal(t, model.WorkerType("labour"), sc.Workers[0].Type, "map sections are sorted by key")
	assert.Equal(t, model.WorkerType("technician"), sc.Workers[1].Type)

	require.Len(t, sc.Activities, 3)
	b := sc.Activities[1]
	assert.Equal(t, 1, b.ExpressDuration)
	assert.Equal(t, []string{"A"}, b.Requirements.Activities)
	assert.Equal(t, []model.EquipmentType{"steelwork"}, b.Requirements.Equipment)
	assert.Equal(t, 2, b.Requirements.Workers["labour"])
	assert.True(t, sc.Activities[2].Hidden)

	require.Len(t, sc.Events, 2)
	bonus, rain := sc.Events[0], sc.Events[1]
	assert.Equal(t, "bonus", bonus.Key)
	assert.Equal(t, []model.Effect{model.DurationModifier{Activities: []string{"B"}, Days: 1}}, rain.Effects)
	assert.Equal(t, []model.Effect{
		model.RevealActivity{Activities: []string{"M"}},
		model.ImmediateReward{Amount: decimal.NewFromFloat(1000)},
	}, bonus.Choices["accept"].Effects)
	assert.Empty(t, bonus.Choices["decline"].Effects)
}

func TestShippedConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	sc, err := cfg.Game.Scenario()
	require.NoError(t, err)
	assert.Equal(t, 12, sc.ProjectDuration)
	assert.Len(t, sc.Activities, 13)
}
