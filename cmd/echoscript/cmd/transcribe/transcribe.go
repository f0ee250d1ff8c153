package transcribe

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"echoscript/cmd/echoscript/cmd/common"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/model"
	"echoscript/internal/app/util/files"
)

var (
	inputDir      string
	urls          []string
	limit         int
	parallel      int
	forceProgress bool
)

func init() {
	Cmd.Flags().StringVarP(&inputDir, "dir", "d", "", "transcribe every audio file in this directory, oldest first")
	Cmd.Flags().StringArrayVarP(&urls, "url", "u", nil, "episode page, podcast page or direct audio link to download and transcribe (repeatable)")
	Cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of files taken from --dir (0 = all)")
	Cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "number of jobs run at the same time")
	Cmd.Flags().BoolVar(&forceProgress, "progress", false, "show progress bars even when stderr is not a terminal")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe [files...]",
	Short: "Transcribe local audio files and wait for the results",
	Long: `Transcribe local audio files and wait for the results

- Each file becomes a job stored under your API key
- --url downloads episode pages (og:audio) or direct links; a xiaoyuzhou
  podcast page expands into all of its episodes
- Chunk progress is drawn per job while it runs
- A failed job keeps the chunks done so far; use 'echoscript retry <id>'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputDir == "" && len(args) == 0 && len(urls) == 0 {
			return fmt.Errorf("give audio files as arguments, --dir or --url")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		progress := converter.ProgressConfig{
			Enabled: converter.ShouldShowProgress(forceProgress),
			Writer:  os.Stderr,
		}
		a, apiKey, cleanup, err := common.SetupWithKey(ctx, progress)
		if err != nil {
			return err
		}
		defer cleanup()

		var results []converter.Result
		if inputDir != "" {
			results, err = a.Converter.ConvertDir(ctx, apiKey, inputDir, files.AudioExtensions, limit, parallel)
			if err != nil {
				return err
			}
		}
		if len(args) > 0 {
			results = append(results, a.Converter.TranscribeFiles(ctx, apiKey, args, parallel)...)
		}
		if len(urls) > 0 {
			results = append(results, a.Converter.TranscribeURLs(ctx, apiKey, urls, parallel)...)
		}
		a.Converter.Flush()

		failed := 0
		out := cmd.OutOrStdout()
		for _, r := range results {
			name := r.Path
			if !strings.Contains(name, "://") {
				name = filepath.Base(name)
			}
			switch {
			case r.Job == nil:
				failed++
				fmt.Fprintf(out, "✗ %s: %v\n", name, r.Err)
			case r.Job.Status == model.JobStatusSuccess:
				fmt.Fprintf(out, "✓ %s  %s  %d segments\n", name, r.Job.ID, r.Job.SegmentCount())
			default:
				failed++
				fmt.Fprintf(out, "✗ %s  %s  %s (%d segments kept)\n", name, r.Job.ID, r.Job.Error, r.Job.SegmentCount())
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}
