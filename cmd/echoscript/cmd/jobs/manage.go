package jobs

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"echoscript/cmd/echoscript/cmd/common"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/model"
)

// RetryCmd re-runs a job from its first chunk
var RetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Re-run a job from the beginning and wait for it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, apiKey, cleanup, err := common.SetupWithKey(ctx, converter.ProgressConfig{})
		if err != nil {
			return err
		}
		defer cleanup()

		runErr := a.Processor.RetryJob(ctx, apiKey, args[0])
		job, err := a.Processor.GetJob(context.WithoutCancel(ctx), apiKey, args[0])
		if err != nil {
			if runErr != nil {
				return runErr
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d segments\n", job.ID, job.Status, job.SegmentCount())
		if job.Status != model.JobStatusSuccess {
			return fmt.Errorf("retry failed: %s", job.Error)
		}
		return runErr
	},
}

// ResumeCmd marks jobs left processing by a stopped process as interrupted
var ResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Mark jobs interrupted by a crash or shutdown so they can be retried",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, apiKey, cleanup, err := common.SetupWithKey(cmd.Context(), converter.ProgressConfig{})
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := a.Processor.ResumeProcessing(cmd.Context(), apiKey)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d job(s) marked interrupted\n", n)
		return nil
	},
}

// DeleteCmd removes a job and its audio
var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a job and its stored audio",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, apiKey, cleanup, err := common.SetupWithKey(cmd.Context(), converter.ProgressConfig{})
		if err != nil {
			return err
		}
		defer cleanup()

		if err := a.Processor.DeleteJob(cmd.Context(), apiKey, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}
