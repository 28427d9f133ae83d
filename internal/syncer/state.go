// Package syncer owns the record set. Every mutation is written to the
// local store first and then mirrored to the remote sheet with one full
// push; a failed push leaves the data local and flags the mirror as stale.
package syncer

import (
	"errors"
	"time"
)

// State is a step of the per-mutation state machine.
type State string

const (
	StateIdle                State = "idle"
	StateLocalWriteInFlight  State = "local_write_in_flight"
	StateLocalWritten        State = "local_written"
	StateRemotePushAttempted State = "remote_push_attempted"
	StateSynced              State = "synced"
	StateLocalOnly           State = "local_only"
)

// Terminal reports whether s ends a mutation.
func (s State) Terminal() bool {
	return s == StateSynced || s == StateLocalOnly
}

var (
	// ErrCollaboratorUnavailable wraps generation or remote failures that
	// abort an operation before any local change.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrPersistence wraps local store failures. Always fatal.
	ErrPersistence = errors.New("local store failure")
	// ErrRemoteSync wraps a failed push. Never fatal to a mutation.
	ErrRemoteSync = errors.New("remote sync failed")
	// ErrNotFound is returned for an unknown destination.
	ErrNotFound = errors.New("destination not found")
	// ErrInvalidRecord is returned for payloads that fail validation.
	ErrInvalidRecord = errors.New("invalid record")
)

// ReasonNoMirror is the LocalOnly reason when no mirror is configured.
const ReasonNoMirror = "remote mirror not configured"

const statusMetaKey = "sync_status"

// Status is the orchestrator's view of the mirror. It is persisted in the
// store so a stale mirror is still reported after a restart.
type Status struct {
	State            State     `json:"state" yaml:"state"`
	LocalOnly        bool      `json:"local_only" yaml:"local_only"`
	LastError        string    `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	LastPush         time.Time `json:"last_push,omitzero" yaml:"last_push,omitempty"`
	LastOp           string    `json:"last_op,omitempty" yaml:"last_op,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
	RemoteConfigured bool      `json:"remote_configured" yaml:"remote_configured"`
	RemoteError      string    `json:"remote_error,omitempty" yaml:"remote_error,omitempty"`
}

// MutationResult reports a completed mutation. Err-free results may still
// be LocalOnly; SyncError then explains why the mirror is stale.
type MutationResult struct {
	Op        string   `json:"op" yaml:"op"`
	Location  string   `json:"location,omitempty" yaml:"location,omitempty"`
	Changed   bool     `json:"changed" yaml:"changed"`
	State     State    `json:"sync_state" yaml:"sync_state"`
	SyncError string   `json:"sync_error,omitempty" yaml:"sync_error,omitempty"`
	Warnings  []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Records   int      `json:"records" yaml:"records"`
}

// LocalOnly reports whether the mutation left the mirror stale.
func (r *MutationResult) LocalOnly() bool {
	return r != nil && r.State == StateLocalOnly
}

// Outcome kinds for a generated name.
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// GenerateOutcome is the result for one requested name.
type GenerateOutcome struct {
	Location  string   `json:"location" yaml:"location"`
	Outcome   string   `json:"outcome" yaml:"outcome"`
	Notice    string   `json:"notice,omitempty" yaml:"notice,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings  []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	State     State    `json:"sync_state,omitempty" yaml:"sync_state,omitempty"`
	SyncError string   `json:"sync_error,omitempty" yaml:"sync_error,omitempty"`
}

// GenerateReport collects the outcomes of a batch, in input order.
type GenerateReport struct {
	Outcomes []GenerateOutcome `json:"outcomes" yaml:"outcomes"`
}

// Count returns how many outcomes have the given kind.
func (r *GenerateReport) Count(kind string) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Outcome == kind {
			n++
		}
	}
	return n
}

// Bootstrap sources.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
	SourceEmpty  = "empty"
)

// BootstrapResult reports where the working set came from at startup.
type BootstrapResult struct {
	Source  string `json:"source" yaml:"source"`
	Records int    `json:"records" yaml:"records"`
}
