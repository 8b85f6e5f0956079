package jobs

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ErrSkip is returned by an Executor when the job no longer needs doing,
// e.g. the article was already retranslated.
var ErrSkip = errors.New("job skipped")

type EnqueueRequest struct {
	Source    string
	DedupeKey string
	Payload   JobPayload
	// Promote hands Source to a still pending job that holds DedupeKey.
	Promote bool
}

type JobPayload struct {
	ArticleID int64  `json:"article_id"`
	Direction string `json:"direction"`
}

// RetranslationJob asks for a fresh translation of one stored article.
type RetranslationJob struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	DedupeKey string     `json:"dedupe_key"`
	Payload   JobPayload `json:"payload"`
	Status    Status     `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (j *RetranslationJob) Terminal() bool {
	return j.Status == StatusSuccess || j.Status == StatusFailed || j.Status == StatusSkipped
}
