package cli

import (
	"context"

	"examship-quiz-service/internal/config"
	"examship-quiz-service/internal/content"
	"examship-quiz-service/internal/infra/postgres"
	"examship-quiz-service/internal/logger"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the bundled chemistry chapters into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the static question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runSeed(cmd.Context(), cfg, log)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrateDB(ctx, db, log); err != nil {
		return err
	}
	n, err := postgres.SeedChapters(ctx, db, content.Chemistry())
	if err != nil {
		return err
	}
	log.Info("question bank seeded", "questions", n)
	return nil
}
