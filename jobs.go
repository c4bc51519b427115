package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Ayman-Hesham/Fintrack/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// jobLog covers the worker path; the request path keeps gin's logger.
var jobLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

var (
	syncQueue chan string
	syncWG    sync.WaitGroup
)

// startSyncWorkers starts the bounded pool that executes sync jobs off the
// request path. Dispatch is a channel send; submission never waits on a
// worker finishing.
func startSyncWorkers(workers, queueSize int) {
	syncQueue = make(chan string, queueSize)
	for i := 0; i < workers; i++ {
		syncWG.Add(1)
		go func() {
			defer syncWG.Done()
			for jobID := range syncQueue {
				processSyncJob(jobID)
			}
		}()
	}
}

// stopSyncWorkers drains the queue and waits for in-flight jobs.
func stopSyncWorkers() {
	close(syncQueue)
	syncWG.Wait()
}

// submitSyncJob returns the job id for the idempotency key, creating and
// dispatching a new job only when no row exists yet. Any existing row wins,
// FAILED ones included: the key is a one-shot token, not a retry handle.
func submitSyncJob(idempotencyKey string, bankAccountID, userID uint) (string, error) {
	var existing models.SyncJob
	if err := db.Where("idempotency_key = ?", idempotencyKey).First(&existing).Error; err == nil {
		return existing.ID, nil
	}

	job := models.SyncJob{
		ID:             uuid.New().String(),
		IdempotencyKey: idempotencyKey,
		Status:         models.JobSubmitted,
		BankAccountID:  bankAccountID,
		UserID:         userID,
	}
	if err := db.Create(&job).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost the race: another request inserted this key first.
			if err2 := db.Where("idempotency_key = ?", idempotencyKey).First(&existing).Error; err2 == nil {
				return existing.ID, nil
			}
			return "", fmt.Errorf("job for key %q missing after unique conflict", idempotencyKey)
		}
		return "", err
	}

	// Only the request that inserted the row dispatches, so one row means
	// exactly one execution.
	syncQueue <- job.ID
	return job.ID, nil
}

// processSyncJob runs one job to a terminal status. Failures stay inside the
// job row; they never reach the submitter or abort other jobs.
func processSyncJob(jobID string) {
	var job models.SyncJob
	if err := db.First(&job, "id = ?", jobID).Error; err != nil {
		jobLog.Warn().Str("job_id", jobID).Msg("dispatched job no longer exists")
		return
	}

	if err := updateJobStatus(job.ID, models.JobProcessing, nil); err != nil {
		jobLog.Error().Err(err).Str("job_id", job.ID).Msg("failed to mark job processing")
		return
	}

	var user models.User
	if err := db.First(&user, job.UserID).Error; err != nil {
		failJob(job.ID, fmt.Errorf("user %d not found", job.UserID))
		return
	}

	synced, err := syncTransactions(job.BankAccountID, &user)
	if err != nil {
		failJob(job.ID, err)
		return
	}

	result := fmt.Sprintf("Successfully synced %d transactions.", len(synced))
	if err := updateJobStatus(job.ID, models.JobCompleted, &result); err != nil {
		jobLog.Error().Err(err).Str("job_id", job.ID).Msg("failed to mark job completed")
		return
	}
	jobLog.Info().Str("job_id", job.ID).Int("transactions", len(synced)).Msg("sync job completed")
}

func failJob(jobID string, cause error) {
	msg := "Job failed: " + cause.Error()
	if err := updateJobStatus(jobID, models.JobFailed, &msg); err != nil {
		jobLog.Error().Err(err).Str("job_id", jobID).Msg("failed to mark job failed")
		return
	}
	jobLog.Warn().Str("job_id", jobID).Str("cause", cause.Error()).Msg("sync job failed")
}

func updateJobStatus(jobID, status string, result *string) error {
	updates := map[string]interface{}{"status": status}
	if result != nil {
		updates["result"] = *result
	}
	return db.Model(&models.SyncJob{}).Where("id = ?", jobID).Updates(updates).Error
}
