package llmcall

import (
	"context"
	"log/slog"

	"github.com/crisrod14/destinosAI/internal/providers"
)

// Recorder writes call records. Recording failures are logged and never
// fail the generation they describe.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a new call recorder. A nil store disables recording.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Record captures a call from a chat result.
func (r *Recorder) Record(ctx context.Context, result *providers.ChatResult, opts RecordOptions) {
	r.RecordCall(ctx, FromChatResult(result, opts))
}

// RecordCall captures an already-constructed Call.
func (r *Recorder) RecordCall(ctx context.Context, call *Call) {
	if r == nil || r.store == nil || call == nil {
		return
	}
	// The caller's context may already be done when the call itself timed out.
	if err := r.store.Insert(context.WithoutCancel(ctx), call); err != nil {
		r.logger.Warn("failed to record generation call",
			"id", call.ID,
			"location", call.Location,
			"error", err)
	}
}
