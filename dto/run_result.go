package dto

import (
	"time"

	"github.com/customeros/docingest/internal/enum"
)

type RunResult struct {
	ConfigurationID     string         `json:"configurationId"`
	MessagesProcessed   int            `json:"messagesProcessed"`
	MessagesSkipped     int            `json:"messagesSkipped"`
	DocumentsUploaded   int            `json:"documentsUploaded"`
	AttachmentsRejected int            `json:"attachmentsRejected"`
	Errors              []string       `json:"errors"`
	Status              enum.RunStatus `json:"status"`
	StartedAt           time.Time      `json:"startedAt"`
	FinishedAt          time.Time      `json:"finishedAt"`
}

func NewRunResult(configurationID string, startedAt time.Time) *RunResult {
	return &RunResult{
		ConfigurationID: configurationID,
		Errors:          []string{},
		StartedAt:       startedAt,
	}
}

func (r *RunResult) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
}

// Finish derives the run status from the collected errors unless a status was already set.
func (r *RunResult) Finish(finishedAt time.Time) {
	r.FinishedAt = finishedAt
	if r.Status != "" {
		return
	}
	if len(r.Errors) == 0 {
		r.Status = enum.RunStatusSucceeded
	} else {
		r.Status = enum.RunStatusPartial
	}
}

func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type RunAllResult struct {
	Results []*RunResult `json:"results"`
}
