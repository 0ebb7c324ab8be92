package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultRefreshSchedule runs shortly after midnight so today and streak fields follow
// the calendar even for users without new events.
const DefaultRefreshSchedule = "5 0 * * *"

// UserLister enumerates every user with stored data.
type UserLister interface {
	UserIDs(ctx context.Context) ([]string, error)
}

// Refresher periodically recomputes every user's weekly summary.
type Refresher struct {
	users   UserLister
	handler *SummaryHandler
	logger  *zap.Logger
	cron    *cron.Cron
	timeout time.Duration
}

// NewRefresher schedules RefreshAll on the given cron spec.
func NewRefresher(users UserLister, handler *SummaryHandler, schedule string, logger *zap.Logger) (*Refresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	r := &Refresher{
		users:   users,
		handler: handler,
		logger:  logger,
		cron:    cron.New(),
		timeout: 10 * time.Minute,
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins the schedule in the background.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	refreshed, err := r.RefreshAll(ctx)
	if err != nil {
		r.logger.Error("summary refresh finished with errors", zap.Int("refreshed", refreshed), zap.Error(err))
		return
	}
	r.logger.Info("summary refresh finished", zap.Int("refreshed", refreshed))
}

// RefreshAll recomputes every known user's summary. It keeps going past individual
// failures and returns them joined.
func (r *Refresher) RefreshAll(ctx context.Context) (int, error) {
	ids, err := r.users.UserIDs(ctx)
	if err != nil {
		return 0, err
	}

	var errs error
	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return refreshed, errors.Join(errs, err)
		}
		if err := r.handler.Refresh(ctx, id); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		refreshed++
	}
	return refreshed, errs
}
