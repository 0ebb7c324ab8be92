package consumer

import (
	"context"
	"time"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
	"github.com/Pelyn9/wellnessmate/internal/observability"
	"github.com/Pelyn9/wellnessmate/internal/report"
)

// SnapshotLoader loads a user's full record snapshot.
type SnapshotLoader interface {
	Snapshot(ctx context.Context, userID string) (aggregator.Snapshot, error)
}

// SummaryWriter stores a computed weekly summary.
type SummaryWriter interface {
	Upsert(ctx context.Context, userID string, summary report.Dashboard, computedAt time.Time) error
}

// SummaryHandler recomputes and stores a user's weekly summary whenever one of their
// events arrives. Every event triggers a full recompute, so duplicates and reordering
// are harmless.
type SummaryHandler struct {
	loader SnapshotLoader
	store  SummaryWriter
	now    func() time.Time
}

// NewSummaryHandler constructs a SummaryHandler.
func NewSummaryHandler(loader SnapshotLoader, store SummaryWriter, now func() time.Time) *SummaryHandler {
	if now == nil {
		now = time.Now
	}
	return &SummaryHandler{loader: loader, store: store, now: now}
}

// Handle refreshes the summary of the event's user.
func (h *SummaryHandler) Handle(ctx context.Context, msg Message) error {
	return h.Refresh(ctx, msg.UserID)
}

// Refresh recomputes and stores the summary for userID.
func (h *SummaryHandler) Refresh(ctx context.Context, userID string) error {
	start := time.Now()
	snapshot, err := h.loader.Snapshot(ctx, userID)
	if err != nil {
		return err
	}

	now := h.now()
	dashboard := aggregator.BuildDashboard(snapshot, now)
	if err := h.store.Upsert(ctx, userID, report.FromDashboard(dashboard), now.UTC()); err != nil {
		return err
	}
	observability.RecordSummaryComputed(time.Since(start))
	return nil
}
