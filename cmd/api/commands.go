package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/playground/bountyhub/internal/application"
	appanalysis "github.com/playground/bountyhub/internal/application/analysis"
	apphunters "github.com/playground/bountyhub/internal/application/hunters"
	"github.com/playground/bountyhub/internal/domain/ai"
	"github.com/playground/bountyhub/internal/domain/bounty"
)

var (
	draftFile  string
	screenUser string
)

// analyzeCmd runs the analyzer and the publish gate once
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a bounty draft and report whether it may be published",
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if draftFile != "-" {
			f, err := os.Open(draftFile)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		var draft bounty.Draft
		if err := json.NewDecoder(r).Decode(&draft); err != nil {
			return fmt.Errorf("decode draft: %w", err)
		}

		client, err := newAIClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		result, err := appanalysis.NewService(client).Analyze(cmd.Context(), draft)
		if err != nil {
			logger.Error("analysis failed", zap.String("reason", ai.ReasonCode(err)), zap.Error(err))
			return err
		}

		out := json.NewEncoder(cmd.OutOrStdout())
		out.SetIndent("", "  ")
		return out.Encode(map[string]any{
			"analysis":        result,
			"canPublish":      bounty.CanPublish(result),
			"criticalMissing": result.CriticalMissing(),
		})
	},
}

// screenCmd runs the screener synchronously for one profile
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Score a hunter profile and write the result back",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		repos := newRepositories(cfg, db)

		svc := &apphunters.Service{
			Profiles: repos.profiles,
			Failures: repos.failures,
			Clock:    application.SystemClock{},
			IDs:      application.UUIDGenerator{},
			Log:      logger,
		}
		res, err := svc.Screen(cmd.Context(), screenUser)
		if err != nil {
			svc.RecordFailure(cmd.Context(), apphunters.Job{UserID: screenUser, Attempt: 1}, apphunters.PhaseAPI, err, false)
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/100, %s\n", screenUser, res.Score, res.Assessment)
		return err
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema for the configured database driver",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrate(cmd.Context(), cfg, db); err != nil {
			return err
		}
		logger.Info("schema applied", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
