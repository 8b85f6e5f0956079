package jobs

import "context"

// Store persists job states so pending work survives a restart.
type Store interface {
	LoadJobs(ctx context.Context) ([]*RetranslationJob, error)
	UpsertJob(ctx context.Context, job *RetranslationJob) error
	DeleteJob(ctx context.Context, jobID string) error
}
