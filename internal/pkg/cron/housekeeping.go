package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// SheetEvictor drops attendance sheets nobody has touched for a while
type SheetEvictor interface {
	EvictIdle(ctx context.Context) (int, error)
}

// SessionPurger removes sessions past their expiry
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

type HousekeepingJobs struct {
	sheets   SheetEvictor
	sessions SessionPurger
}

func NewHousekeepingJobs(sheets SheetEvictor, sessions SessionPurger) *HousekeepingJobs {
	return &HousekeepingJobs{
		sheets:   sheets,
		sessions: sessions,
	}
}

func (j *HousekeepingJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("evict_idle_sheets", interval, j.EvictIdleSheets)
	scheduler.AddJob("purge_expired_sessions", interval, j.PurgeExpiredSessions)
}

func (j *HousekeepingJobs) EvictIdleSheets(ctx context.Context) error {
	if j.sheets == nil {
		return errors.New("no sheet evictor configured")
	}
	evicted, err := j.sheets.EvictIdle(ctx)
	if err != nil {
		return err
	}
	if evicted > 0 {
		slog.Info("Cron: evicted idle attendance sheets", "count", evicted)
	}
	return nil
}

func (j *HousekeepingJobs) PurgeExpiredSessions(ctx context.Context) error {
	if j.sessions == nil {
		return errors.New("no session purger configured")
	}
	purged, err := j.sessions.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if purged > 0 {
		slog.Info("Cron: purged expired sessions", "count", purged)
	}
	return nil
}
