package jobs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
)

// ProgressRecalculator is the part of the enrollment service the job drives.
type ProgressRecalculator interface {
	ListActive(ctx context.Context, afterID uuid.UUID, limit int) ([]enrollment.Enrollment, error)
	Recalculate(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProgressRecalculationJob refreshes stored progress of active enrollments
// after lessons were added to or removed from their course.
type ProgressRecalculationJob struct {
	enrollments ProgressRecalculator
	logger      *slog.Logger
	batchSize   int
}

// NewProgressRecalculationJob creates the job.
func NewProgressRecalculationJob(enrollments ProgressRecalculator, logger *slog.Logger) *ProgressRecalculationJob {
	return &ProgressRecalculationJob{
		enrollments: enrollments,
		logger:      logger,
		batchSize:   100,
	}
}

// Name returns the job name.
func (j *ProgressRecalculationJob) Name() string {
	return "progress_recalculation"
}

// Execute walks every active enrollment in id order.
func (j *ProgressRecalculationJob) Execute(ctx context.Context) error {
	j.logger.Debug("recalculating enrollment progress")

	updatedCount := 0
	errorCount := 0
	after := uuid.Nil

	for {
		batch, err := j.enrollments.ListActive(ctx, after, j.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		for _, e := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := j.enrollments.Recalculate(ctx, e.ID)
			if err != nil {
				j.logger.Warn("failed to recalculate progress",
					slog.String("enrollmentId", e.ID.String()),
					slog.String("error", err.Error()))
				errorCount++
				continue
			}
			if changed {
				updatedCount++
			}
		}

		after = batch[len(batch)-1].ID
		if len(batch) < j.batchSize {
			break
		}
	}

	if updatedCount > 0 || errorCount > 0 {
		j.logger.Info("progress recalculation completed",
			slog.Int("updated", updatedCount),
			slog.Int("errors", errorCount))
	}
	return nil
}
