package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apprecurring "github.com/sponsorship/backend/internal/application/recurring"
	"github.com/sponsorship/backend/internal/infrastructure/persistence/models"
)

// GormTaskQueue implements TaskQueue on a database table. Enqueue inserts a
// pending job; the per-channel worker claims and runs it.
type GormTaskQueue struct {
	db *gorm.DB
}

// NewGormTaskQueue creates a new GormTaskQueue
func NewGormTaskQueue(db *gorm.DB) *GormTaskQueue {
	return &GormTaskQueue{db: db}
}

// Enqueue inserts a pending job on the given channel and returns its ID
func (q *GormTaskQueue) Enqueue(ctx context.Context, channel, jobType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	now := time.Now()
	job := models.QueueJobModel{
		ID:        uuid.New(),
		Channel:   channel,
		JobType:   jobType,
		State:     string(apprecurring.JobStatePending),
		Payload:   data,
		RunAfter:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := q.db.WithContext(ctx).Create(&job).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return job.ID, nil
}

// CountByChannelAndState counts jobs of a channel in the given state
func (q *GormTaskQueue) CountByChannelAndState(ctx context.Context, channel string, state apprecurring.JobState) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.QueueJobModel{}).
		Where("channel = ? AND state = ?", channel, string(state)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// claimNext atomically claims the oldest due pending job of a channel and
// marks it started. Returns nil when no job is due.
func (q *GormTaskQueue) claimNext(ctx context.Context, channel string, now time.Time) (*models.QueueJobModel, error) {
	var job *models.QueueJobModel
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate models.QueueJobModel
		err := tx.
			Where("channel = ? AND state = ? AND run_after <= ?",
				channel, string(apprecurring.JobStatePending), now).
			Order("run_after ASC, created_at ASC").
			First(&candidate).Error
		if err != nil {
			return err
		}

		result := tx.Model(&models.QueueJobModel{}).
			Where("id = ? AND state = ?", candidate.ID, string(apprecurring.JobStatePending)).
			Updates(map[string]any{
				"state":      string(apprecurring.JobStateStarted),
				"attempts":   candidate.Attempts + 1,
				"started_at": now,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		candidate.State = string(apprecurring.JobStateStarted)
		candidate.Attempts++
		candidate.StartedAt = &now
		job = &candidate
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

// requeueStale returns jobs to pending whose worker died mid-run. A started
// job untouched for longer than the channel lease can no longer be running,
// because the lease that guarded it has already expired. Stale jobs out of
// attempts are failed instead of requeued.
func (q *GormTaskQueue) requeueStale(ctx context.Context, channel string, olderThan time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-olderThan)
	requeued := q.db.WithContext(ctx).
		Model(&models.QueueJobModel{}).
		Where("channel = ? AND state = ? AND updated_at < ? AND attempts < max_retries",
			channel, string(apprecurring.JobStateStarted), cutoff).
		Updates(map[string]any{
			"state":      string(apprecurring.JobStatePending),
			"run_after":  now,
			"started_at": nil,
			"updated_at": now,
		})
	if requeued.Error != nil {
		return 0, fmt.Errorf("failed to requeue stale jobs: %w", requeued.Error)
	}

	// Whatever stale jobs remain have exhausted their attempts.
	expired := q.db.WithContext(ctx).
		Model(&models.QueueJobModel{}).
		Where("channel = ? AND state = ? AND updated_at < ?",
			channel, string(apprecurring.JobStateStarted), cutoff).
		Updates(map[string]any{
			"state":       string(apprecurring.JobStateFailed),
			"last_error":  "worker lost while job was running",
			"finished_at": now,
			"updated_at":  now,
		})
	if expired.Error != nil {
		return 0, fmt.Errorf("failed to expire stale jobs: %w", expired.Error)
	}
	return requeued.RowsAffected, nil
}

// markDone finishes a job successfully
func (q *GormTaskQueue) markDone(ctx context.Context, jobID uuid.UUID, now time.Time) error {
	return q.db.WithContext(ctx).
		Model(&models.QueueJobModel{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"state":       string(apprecurring.JobStateDone),
			"finished_at": now,
			"updated_at":  now,
		}).Error
}

// markFailed records a job failure. While attempts remain the job goes back
// to pending with a delayed run_after; otherwise it is failed for good.
func (q *GormTaskQueue) markFailed(ctx context.Context, job *models.QueueJobModel, jobErr error, retryDelay time.Duration, now time.Time) error {
	updates := map[string]any{
		"last_error": jobErr.Error(),
		"updated_at": now,
	}
	if job.Attempts < job.MaxRetries {
		updates["state"] = string(apprecurring.JobStatePending)
		updates["run_after"] = now.Add(retryDelay)
	} else {
		updates["state"] = string(apprecurring.JobStateFailed)
		updates["finished_at"] = now
	}
	return q.db.WithContext(ctx).
		Model(&models.QueueJobModel{}).
		Where("id = ?", job.ID).
		Updates(updates).Error
}

// Ensure GormTaskQueue implements TaskQueue
var _ apprecurring.TaskQueue = (*GormTaskQueue)(nil)
