package export

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"echoscript/cmd/echoscript/cmd/common"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/converter/export"
)

var (
	format         string
	outputFilePath string
)

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", "full", "full, clean or xlsx")
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "output file (default: a dated name in the current directory, '-' for stdout)")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a job's transcription as JSON or Excel",
	Long: `Export a job's transcription as JSON or Excel

- full: summary and every segment field
- clean: segments without the verbatim transcript
- xlsx: one row per segment plus a summary sheet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}

		a, apiKey, cleanup, err := common.SetupWithKey(cmd.Context(), converter.ProgressConfig{})
		if err != nil {
			return err
		}
		defer cleanup()

		job, err := a.Processor.GetJob(cmd.Context(), apiKey, args[0])
		if err != nil {
			return err
		}

		if outputFilePath == "-" {
			return export.Write(cmd.OutOrStdout(), job.Result, f)
		}

		path := outputFilePath
		if path == "" {
			path = f.FileName(time.Now())
		}
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := export.Write(out, job.Result, f); err != nil {
			out.Close()
			os.Remove(path)
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "export finished, exported file path: %v\n", path)
		return nil
	},
}
