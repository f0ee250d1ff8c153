package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"echoscript/cmd/echoscript/cmd/common"
	"echoscript/internal/app"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/model"
)

var (
	asJSON   bool
	follow   bool
	noResume bool
	interval time.Duration
)

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	Cmd.Flags().BoolVarP(&follow, "follow", "f", false, "poll until no job is processing")
	Cmd.Flags().BoolVar(&noResume, "no-resume", false, "list without marking processing jobs interrupted")
	Cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval for --follow")
}

// Cmd represents the jobs command
var Cmd = &cobra.Command{
	Use:   "jobs [id]",
	Short: "List your jobs, newest first, or show one job",
	Long: `List your jobs, newest first, or show one job

- Jobs left processing by a stopped process are marked interrupted first.
  This assumes no other process is running jobs for the same key; when
  'echoscript serve' shares the store, pass --no-resume or its running
  jobs are marked interrupted too
- With --follow the list is polled without marking anything, so it is
  safe next to a server working through the jobs`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, apiKey, cleanup, err := common.SetupWithKey(ctx, converter.ProgressConfig{})
		if err != nil {
			return err
		}
		defer cleanup()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			job, err := a.Processor.GetJob(ctx, apiKey, args[0])
			if err != nil {
				return err
			}
			return common.PrintJSON(out, job)
		}

		if follow {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return followJobs(ctx, a, apiKey, out)
		}

		list, err := listJobs(ctx, a.Processor, apiKey, !noResume, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(out, list)
		}
		printTable(out, list)
		return nil
	},
}

type jobLister interface {
	ResumeProcessing(ctx context.Context, apiKey string) (int, error)
	GetJobs(ctx context.Context, apiKey string) ([]*model.Job, error)
}

// listJobs returns the feed, first marking stale jobs interrupted when resume is set
func listJobs(ctx context.Context, l jobLister, apiKey string, resume bool, errOut io.Writer) ([]*model.Job, error) {
	if resume {
		n, err := l.ResumeProcessing(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			fmt.Fprintf(errOut, "%d interrupted job(s) can be retried\n", n)
		}
	}
	return l.GetJobs(ctx, apiKey)
}

func printTable(w io.Writer, jobs []*model.Job) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED\tSTATUS\tDURATION\tSEGMENTS\tERROR")
	for _, j := range jobs {
		duration := "-"
		if j.Duration != nil {
			duration = (time.Duration(*j.Duration * float64(time.Second))).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			j.ID, j.FileName, j.CreatedAt.Local().Format("2006-01-02 15:04"),
			j.Status, duration, j.SegmentCount(), j.Error)
	}
	tw.Flush()
}

// followJobs prints every status or segment-count change until no job is processing
func followJobs(ctx context.Context, a *app.App, apiKey string, w io.Writer) error {
	seen := make(map[string]string)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		list, err := a.Processor.GetJobs(ctx, apiKey)
		if err != nil {
			return err
		}
		for _, j := range list {
			state := fmt.Sprintf("%s/%d", j.Status, j.SegmentCount())
			if seen[j.ID] == state {
				continue
			}
			seen[j.ID] = state
			line := fmt.Sprintf("%s  %-10s  %3d segments  %s", j.ID, j.Status, j.SegmentCount(), j.FileName)
			if j.Error != "" {
				line += "  " + j.Error
			}
			fmt.Fprintln(w, line)
		}

		if !lo.SomeBy(list, func(j *model.Job) bool { return j.Status == model.JobStatusProcessing }) {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
