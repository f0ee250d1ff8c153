package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"echoscript/cmd/echoscript/cmd/common"
	"echoscript/cmd/echoscript/cmd/export"
	"echoscript/cmd/echoscript/cmd/jobs"
	"echoscript/cmd/echoscript/cmd/migrate"
	"echoscript/cmd/echoscript/cmd/serve"
	"echoscript/cmd/echoscript/cmd/transcribe"
	"echoscript/cmd/echoscript/cmd/validate"
	"echoscript/cmd/echoscript/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "echoscript",
	Short: "Transcribe long recordings into speaker-attributed, corrected text",
	Long: `Transcribe long recordings into speaker-attributed, corrected text.

- Audio is normalized to 16 kHz mono and split into 10 minute chunks
- Each chunk is transcribed by Gemini with the previous line as context
- Progress is saved after every chunk; failed jobs keep their partial result
- Jobs are stored per API key in SQLite, Postgres or Redis`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(jobs.Cmd)
	rootCmd.AddCommand(jobs.RetryCmd)
	rootCmd.AddCommand(jobs.ResumeCmd)
	rootCmd.AddCommand(jobs.DeleteCmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(migrate.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVarP(&common.ConfigPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&common.APIKey, "api-key", "k", "", "Gemini API key (default $GEMINI_API_KEY)")
	rootCmd.PersistentFlags().BoolVarP(&common.Verbose, "verbose", "V", false, "verbose output")
}
