package serve

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"echoscript/cmd/echoscript/cmd/common"
	"echoscript/internal/app/converter"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API

- Clients authenticate every request with the X-API-Key header
- Jobs run in the background; poll GET /api/v1/jobs for progress
- On shutdown running jobs are cancelled and can be retried later`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cleanup, err := common.Setup(ctx, converter.ProgressConfig{})
		if err != nil {
			return err
		}
		defer cleanup()

		a.Logger.Info("echoscript starting",
			zap.String("port", a.Config.Server.Port),
			zap.String("store", a.Config.Storage.Driver),
			zap.String("audio", a.Config.Storage.AudioBackend),
			zap.String("model", a.Client.Model()))

		return a.Server.Run(ctx)
	},
}
