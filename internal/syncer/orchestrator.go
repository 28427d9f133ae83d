package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crisrod14/destinosAI/internal/generate"
	"github.com/crisrod14/destinosAI/internal/metrics"
	"github.com/crisrod14/destinosAI/internal/schema"
	"github.com/crisrod14/destinosAI/internal/sheets"
	"github.com/crisrod14/destinosAI/internal/store"
)

// Store is the local persistence the orchestrator writes through.
// *store.Store implements it.
type Store interface {
	Upsert(ctx context.Context, rec schema.Record) error
	UpsertAll(ctx context.Context, recs []schema.Record) error
	Get(ctx context.Context, location string) (schema.Record, error)
	GetAll(ctx context.Context) ([]schema.Record, error)
	Exists(ctx context.Context, location string) (bool, error)
	Delete(ctx context.Context, location string) (bool, error)
	Reset(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
	SetMetaJSON(ctx context.Context, key string, v any) error
	GetMetaJSON(ctx context.Context, key string, v any) (bool, error)
}

// Generator produces a record for a destination name.
// *generate.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, location string) (*generate.Result, error)
}

// Config holds Orchestrator dependencies.
type Config struct {
	Store     Store
	Generator Generator     // nil disables Generate
	Remote    sheets.Remote // nil means no mirror
	RemoteErr error         // why an enabled mirror could not be built
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
	Now       func() time.Time
}

// Orchestrator serializes mutations and drives the sync state machine.
type Orchestrator struct {
	store     Store
	generator Generator
	remote    sheets.Remote
	remoteErr error
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time

	// mu admits one mutation at a time.
	mu sync.Mutex

	statusMu sync.RWMutex
	status   Status
	settled  State // last terminal state, restored after an aborted write
}

// New creates an Orchestrator. Call Bootstrap before serving requests.
func New(cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	o := &Orchestrator{
		store:     cfg.Store,
		generator: cfg.Generator,
		remote:    cfg.Remote,
		remoteErr: cfg.RemoteErr,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	o.status = Status{State: StateIdle, RemoteConfigured: o.remote != nil, RemoteError: o.remoteError()}
	o.settled = StateIdle
	return o
}

// Status returns a snapshot of the sync status.
func (o *Orchestrator) Status() Status {
	o.statusMu.RLock()
	defer o.statusMu.RUnlock()
	return o.status
}

// Restore loads the persisted status. A missing entry keeps the default.
func (o *Orchestrator) Restore(ctx context.Context) error {
	var saved Status
	ok, err := o.store.GetMetaJSON(ctx, statusMetaKey, &saved)
	if err != nil {
		return fmt.Errorf("%w: load sync status: %w", ErrPersistence, err)
	}
	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	if ok {
		saved.RemoteConfigured = o.remote != nil
		saved.RemoteError = o.remoteError()
		if !saved.State.Terminal() {
			saved.State = StateIdle
		}
		o.status = saved
		o.settled = saved.State
	}
	o.metrics.SetLocalOnly(o.status.LocalOnly)
	return nil
}

// Bootstrap prepares the working set at startup. The local store wins;
// only an empty store is seeded from the mirror, and every pulled record
// is persisted before Bootstrap returns.
func (o *Orchestrator) Bootstrap(ctx context.Context) (*BootstrapResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.Restore(ctx); err != nil {
		return nil, err
	}

	n, err := o.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count records: %w", ErrPersistence, err)
	}
	o.metrics.SetRecords(n)
	if n > 0 {
		o.logger.Info("using local store", "records", n)
		return &BootstrapResult{Source: SourceLocal, Records: n}, nil
	}
	if o.remote == nil {
		return &BootstrapResult{Source: SourceEmpty}, nil
	}

	pulled, err := o.remote.Pull(ctx)
	if err != nil {
		return &BootstrapResult{Source: SourceEmpty}, fmt.Errorf("%w: pull remote: %w", ErrCollaboratorUnavailable, err)
	}
	if len(pulled) == 0 {
		return &BootstrapResult{Source: SourceEmpty}, nil
	}
	// Seed in one transaction. A partial seed would be taken as local data
	// on the next start.
	if err := o.store.UpsertAll(ctx, pulled); err != nil {
		return nil, fmt.Errorf("%w: persist pulled records: %w", ErrPersistence, err)
	}
	o.metrics.SetRecords(len(pulled))
	o.finish(ctx, "bootstrap", StateSynced, "")
	o.logger.Info("seeded local store from remote", "records", len(pulled))
	return &BootstrapResult{Source: SourceRemote, Records: len(pulled)}, nil
}

// Records returns every stored record in insertion order.
func (o *Orchestrator) Records(ctx context.Context) ([]schema.Record, error) {
	recs, err := o.store.GetAll(ctx)
	if err != nil {
		return recs, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return recs, nil
}

// Record returns one destination.
func (o *Orchestrator) Record(ctx context.Context, location string) (schema.Record, error) {
	rec, err := o.store.Get(ctx, strings.TrimSpace(location))
	if errors.Is(err, store.ErrNotFound) {
		return schema.Record{}, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	if err != nil {
		return schema.Record{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return rec, nil
}

// Save writes rec locally and then pushes the full set.
func (o *Orchestrator) Save(ctx context.Context, rec schema.Record) (*MutationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.save(ctx, "save", rec)
}

func (o *Orchestrator) save(ctx context.Context, op string, rec schema.Record) (*MutationResult, error) {
	loc := strings.TrimSpace(rec.Location())
	if loc == "" {
		return nil, fmt.Errorf("%w: LOCATION is empty", ErrInvalidRecord)
	}
	rec = schema.Normalize(rec.Map(), loc).With(schema.LocationField, loc)

	o.transition(StateLocalWriteInFlight, op, loc)
	if err := o.store.Upsert(ctx, rec); err != nil {
		o.abort(op, loc, err)
		return nil, fmt.Errorf("%w: save %s: %w", ErrPersistence, loc, err)
	}
	o.transition(StateLocalWritten, op, loc)

	res := &MutationResult{Op: op, Location: loc, Changed: true, Warnings: rec.EmptyMandatory()}
	o.push(ctx, res)
	return res, nil
}

// Edit applies field changes to an existing record and saves it. Unknown
// field names and attempts to rename the record are rejected.
func (o *Orchestrator) Edit(ctx context.Context, location string, changes map[string]string) (*MutationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	location = strings.TrimSpace(location)
	if err := checkChanges(location, changes); err != nil {
		return nil, err
	}
	current, err := o.Record(ctx, location)
	if err != nil {
		return nil, err
	}
	return o.save(ctx, "edit", current.Merge(changes))
}

// ApplyJSON validates a JSON object of field values and applies it to
// location. An existing record is patched; a missing one is created.
func (o *Orchestrator) ApplyJSON(ctx context.Context, location string, payload []byte) (*MutationResult, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: LOCATION is empty", ErrInvalidRecord)
	}
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object: %w", ErrInvalidRecord, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object", ErrInvalidRecord)
	}
	// A patch may omit LOCATION; the path names the record.
	if _, ok := raw[schema.LocationField]; !ok {
		raw[schema.LocationField] = location
		var err error
		if payload, err = json.Marshal(raw); err != nil {
			return nil, fmt.Errorf("%w: encode payload: %w", ErrInvalidRecord, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	changes, err := schema.Flatten(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	for name := range changes {
		if !schema.Has(name) {
			delete(changes, name)
		}
	}
	if err := checkChanges(location, changes); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	current, err := o.Record(ctx, location)
	switch {
	case errors.Is(err, ErrNotFound):
		changes[schema.LocationField] = location
		return o.save(ctx, "create", schema.Normalize(changes, location))
	case err != nil:
		return nil, err
	}
	return o.save(ctx, "edit", current.Merge(changes))
}

func checkChanges(location string, changes map[string]string) error {
	var unknown []string
	for name, v := range changes {
		if !schema.Has(name) {
			unknown = append(unknown, name)
			continue
		}
		if name == schema.LocationField && strings.TrimSpace(v) != location {
			return fmt.Errorf("%w: LOCATION cannot be changed (%q to %q)", ErrInvalidRecord, location, v)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: unknown fields %s", ErrInvalidRecord, strings.Join(unknown, ", "))
	}
	return nil
}

// ParseNames splits newline-separated destination names, trimming each
// and dropping blanks and repeats while keeping first-seen order.
func ParseNames(input string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(input, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Generate creates a record for every new name in input. Existing
// destinations are skipped with a notice. A generation failure is
// reported for that name and the batch continues; a local store failure
// stops the batch and is returned.
func (o *Orchestrator) Generate(ctx context.Context, input string) (*GenerateReport, error) {
	if o.generator == nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, generate.ErrUnavailable)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	report := &GenerateReport{}
	for _, name := range ParseNames(input) {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("generate batch interrupted", "done", len(report.Outcomes), "error", err)
			return report, err
		}
		exists, err := o.store.Exists(ctx, name)
		if err != nil {
			return report, fmt.Errorf("%w: check %s: %w", ErrPersistence, name, err)
		}
		if exists {
			o.metrics.Generation(metrics.OutcomeSkipped, 0)
			report.Outcomes = append(report.Outcomes, GenerateOutcome{
				Location: name,
				Outcome:  OutcomeSkipped,
				Notice:   fmt.Sprintf("%s already exists", name),
			})
			continue
		}

		start := o.now()
		gen, err := o.generator.Generate(ctx, name)
		if err != nil {
			o.metrics.Generation(metrics.OutcomeFailure, o.now().Sub(start))
			o.logger.Warn("generation failed", "location", name, "error", err)
			report.Outcomes = append(report.Outcomes, GenerateOutcome{
				Location: name,
				Outcome:  OutcomeFailed,
				Error:    fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, err).Error(),
			})
			continue
		}
		o.metrics.Generation(metrics.OutcomeSuccess, o.now().Sub(start))

		res, err := o.save(ctx, "generate", gen.Record)
		if err != nil {
			report.Outcomes = append(report.Outcomes, GenerateOutcome{
				Location: name,
				Outcome:  OutcomeFailed,
				Error:    err.Error(),
			})
			return report, err
		}
		report.Outcomes = append(report.Outcomes, GenerateOutcome{
			Location:  name,
			Outcome:   OutcomeCreated,
			Warnings:  gen.Warnings,
			State:     res.State,
			SyncError: res.SyncError,
		})
	}
	return report, nil
}

// Delete removes a destination. Deleting an absent destination is a
// no-op and does not push.
func (o *Orchestrator) Delete(ctx context.Context, location string) (*MutationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	location = strings.TrimSpace(location)
	o.transition(StateLocalWriteInFlight, "delete", location)
	existed, err := o.store.Delete(ctx, location)
	if err != nil {
		o.abort("delete", location, err)
		return nil, fmt.Errorf("%w: delete %s: %w", ErrPersistence, location, err)
	}
	if !existed {
		o.settle()
		return &MutationResult{Op: "delete", Location: location, State: o.Status().State}, nil
	}
	o.transition(StateLocalWritten, "delete", location)

	res := &MutationResult{Op: "delete", Location: location, Changed: true}
	o.push(ctx, res)
	return res, nil
}

// Reset removes every destination and pushes the empty set.
func (o *Orchestrator) Reset(ctx context.Context) (*MutationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.transition(StateLocalWriteInFlight, "reset", "")
	n, err := o.store.Reset(ctx)
	if err != nil {
		o.abort("reset", "", err)
		return nil, fmt.Errorf("%w: reset: %w", ErrPersistence, err)
	}
	o.transition(StateLocalWritten, "reset", "")
	o.logger.Info("reset local store", "removed", n)

	res := &MutationResult{Op: "reset", Changed: n > 0}
	o.push(ctx, res)
	return res, nil
}

// Sync pushes the local set without changing it. A successful push clears
// the LocalOnly flag.
func (o *Orchestrator) Sync(ctx context.Context) (*MutationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.transition(StateLocalWritten, "sync", "")
	res := &MutationResult{Op: "sync"}
	o.push(ctx, res)
	return res, nil
}

// push attempts one full push and records the terminal state in res.
// Caller holds o.mu.
func (o *Orchestrator) push(ctx context.Context, res *MutationResult) {
	o.transition(StateRemotePushAttempted, res.Op, res.Location)

	state, reason := StateSynced, ""
	records, err := o.store.GetAll(ctx)
	res.Records = len(records)
	o.metrics.SetRecords(len(records))

	switch {
	case o.remote == nil:
		state, reason = StateLocalOnly, o.noMirrorReason()
	case err != nil:
		state, reason = StateLocalOnly, fmt.Errorf("%w: read local set: %w", ErrRemoteSync, err).Error()
	default:
		if _, perr := o.remote.Push(ctx, records); perr != nil {
			state, reason = StateLocalOnly, fmt.Errorf("%w: %w", ErrRemoteSync, perr).Error()
		}
		o.metrics.Push(state == StateSynced)
	}

	if state == StateLocalOnly {
		o.logger.Warn("remote mirror is stale", "op", res.Op, "location", res.Location, "reason", reason)
	}
	res.State = state
	res.SyncError = reason
	o.finish(ctx, res.Op, state, reason)
	o.metrics.Mutation(res.Op, string(state))
}

// remoteError is the construction error of an enabled mirror, or "".
func (o *Orchestrator) remoteError() string {
	if o.remote != nil || o.remoteErr == nil {
		return ""
	}
	return fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, o.remoteErr).Error()
}

// noMirrorReason explains why a mutation could not be pushed when no
// mirror is present.
func (o *Orchestrator) noMirrorReason() string {
	if reason := o.remoteError(); reason != "" {
		return reason
	}
	return ReasonNoMirror
}

func (o *Orchestrator) transition(s State, op, location string) {
	o.statusMu.Lock()
	prev := o.status.State
	o.status.State = s
	o.statusMu.Unlock()
	o.logger.Debug("sync state", "op", op, "location", location, "from", prev, "to", s)
}

// abort returns to the last terminal state after a failed local write.
// Nothing was changed, so the mirror flag stays as it was.
func (o *Orchestrator) abort(op, location string, err error) {
	o.logger.Error("local write failed", "op", op, "location", location, "error", err)
	o.settle()
}

func (o *Orchestrator) settle() {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	o.status.State = o.settled
}

func (o *Orchestrator) finish(ctx context.Context, op string, s State, reason string) {
	now := o.now().UTC()

	o.statusMu.Lock()
	o.status.State = s
	o.status.LastOp = op
	o.status.UpdatedAt = now
	o.status.LocalOnly = s == StateLocalOnly
	o.status.LastError = reason
	if s == StateSynced && op != "bootstrap" {
		o.status.LastPush = now
	}
	o.settled = s
	snapshot := o.status
	o.statusMu.Unlock()

	o.metrics.SetLocalOnly(snapshot.LocalOnly)
	if err := o.store.SetMetaJSON(ctx, statusMetaKey, snapshot); err != nil {
		o.logger.Warn("failed to persist sync status", "error", err)
	}
}
