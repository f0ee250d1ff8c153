package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"echoscript/cmd/echoscript/cmd/common"
	"echoscript/internal/app"
	"echoscript/internal/app/logging"
	"echoscript/internal/app/repository/migrate"
	"echoscript/internal/config"
)

var (
	toDriver      string
	toSQLitePath  string
	toDatabaseURL string
	toRedisAddr   string
)

func init() {
	Cmd.Flags().StringVar(&toDriver, "to", "", "destination store: sqlite, postgres or redis")
	Cmd.Flags().StringVar(&toSQLitePath, "to-sqlite", "", "destination SQLite file")
	Cmd.Flags().StringVar(&toDatabaseURL, "to-database-url", "", "destination Postgres connection string")
	Cmd.Flags().StringVar(&toRedisAddr, "to-redis", "", "destination Redis address")
	Cmd.MarkFlagRequired("to")
}

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy every job record from the configured store to another store",
	Long: `Copy every job record from the configured store to another store

- All namespaces are copied; audio blobs are not touched
- Records already present in the destination are overwritten`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := common.LoadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.NewLogger(cfg.Log.Development, cfg.Log.Level)
		if err != nil {
			return err
		}
		defer logger.Sync()

		dstCfg := config.StorageConfig{
			Driver:      toDriver,
			SQLitePath:  toSQLitePath,
			DatabaseURL: toDatabaseURL,
			RedisAddr:   toRedisAddr,
		}
		if err := config.ValidateStore(dstCfg); err != nil {
			return fmt.Errorf("destination: %w", err)
		}
		if location(dstCfg) == location(cfg.Storage) {
			return fmt.Errorf("source and destination are the same store")
		}

		src, err := app.OpenJobDAO(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer src.Close()

		dst, err := app.OpenJobDAO(ctx, dstCfg)
		if err != nil {
			return fmt.Errorf("open destination: %w", err)
		}
		defer dst.Close()

		stats, err := migrate.CopyJobs(ctx, src, dst, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %d job(s) across %d namespace(s), %d failed\n",
			stats.Copied, stats.Namespaces, stats.Failed)
		if stats.Failed > 0 {
			return fmt.Errorf("%d job(s) failed to copy", stats.Failed)
		}
		return nil
	},
}

func location(s config.StorageConfig) string {
	switch s.Driver {
	case "postgres":
		return "postgres:" + s.DatabaseURL
	case "redis":
		return fmt.Sprintf("redis:%s/%d", s.RedisAddr, s.RedisDB)
	default:
		return "sqlite:" + s.SQLitePath
	}
}
