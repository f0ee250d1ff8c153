// Package migrate copies job records between job stores, e.g. from the
// embedded sqlite file to a shared postgres or redis instance.
package migrate

import (
	"context"

	"go.uber.org/zap"

	"echoscript/internal/app/repository"
)

// Stats summarizes a copy run
type Stats struct {
	Namespaces int
	Copied     int
	Failed     int
}

// CopyJobs copies every job in every namespace from src to dst. Records
// that fail to save are logged and counted; the run continues.
func CopyJobs(ctx context.Context, src, dst repository.JobDAO, logger *zap.Logger) (Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var stats Stats

	namespaces, err := src.ListNamespaces(ctx)
	if err != nil {
		return stats, err
	}

	for _, ns := range namespaces {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		jobs, err := src.ListJobs(ctx, ns)
		if err != nil {
			return stats, err
		}
		stats.Namespaces++

		for _, job := range jobs {
			if err := dst.SaveJob(ctx, ns, job); err != nil {
				logger.Warn("failed to copy job",
					zap.String("namespace", ns),
					zap.String("jobId", job.ID),
					zap.Error(err))
				stats.Failed++
				continue
			}
			stats.Copied++
		}
	}

	logger.Info("job migration finished",
		zap.Int("namespaces", stats.Namespaces),
		zap.Int("copied", stats.Copied),
		zap.Int("failed", stats.Failed))
	return stats, nil
}
