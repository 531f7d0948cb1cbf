package models

import (
	"fmt"
	"time"
)

// Source systems a sync run can target.
const (
	ServiceJamendo = "Jamendo"
	ServiceGeneral = "GENERAL"
)

// Sync run lifecycle states. A run moves Planned -> Running -> Finished or
// Failed; a crashed process leaves a visible Running row behind.
const (
	RunPlanned  = "Planned"
	RunRunning  = "Running"
	RunFinished = "Finished"
	RunFailed   = "Failed"
)

// SyncRun is one synchronization attempt against a source system. Rows are
// created when a run starts and mutated when it ends, never deleted.
type SyncRun struct {
	id        string
	sequence  int
	service   string
	status    string
	startedAt time.Time
	exception string
	createdAt time.Time
	updatedAt time.Time
}

// NewSyncRun creates a SyncRun for the given source system in Planned state.
func NewSyncRun(sequence int, service string) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:  sequence,
		service:   service,
		status:    RunPlanned,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *SyncRun) ID() string           { return r.id }
func (r *SyncRun) Sequence() int        { return r.sequence }
func (r *SyncRun) Service() string      { return r.service }
func (r *SyncRun) Status() string       { return r.status }
func (r *SyncRun) StartedAt() time.Time { return r.startedAt }
func (r *SyncRun) Exception() string    { return r.exception }
func (r *SyncRun) CreatedAt() time.Time { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time { return r.updatedAt }

func (r *SyncRun) SetID(id string)           { r.id = id }
func (r *SyncRun) SetSequence(seq int)       { r.sequence = seq }
func (r *SyncRun) SetStatus(status string)   { r.status = status }
func (r *SyncRun) SetException(msg string)   { r.exception = msg }
func (r *SyncRun) SetStartedAt(t time.Time)  { r.startedAt = t }
func (r *SyncRun) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *SyncRun) SetUpdatedAt(t time.Time)  { r.updatedAt = t }

func (r *SyncRun) Validate() error {
	if r.service == "" {
		return fmt.Errorf("sync run service is required")
	}
	switch r.status {
	case RunPlanned, RunRunning, RunFinished, RunFailed:
		return nil
	}
	return fmt.Errorf("unknown sync run status: %s", r.status)
}
