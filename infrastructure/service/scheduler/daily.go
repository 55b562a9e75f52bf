package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

// Job is the work run on every tick.
type Job func(ctx context.Context) error

// Daily runs a job once a day at a fixed wall-clock time.
type Daily struct {
	hour   int
	minute int
	loc    *time.Location
	clock  clockwork.Clock
	job    Job
	logger logger.Logger
	name   string
}

type DailyConfig struct {
	Name     string
	Hour     int
	Minute   int
	Location *time.Location
}

func NewDaily(conf DailyConfig, job Job, clock clockwork.Clock, log logger.Logger) *Daily {
	loc := conf.Location
	if loc == nil {
		loc = time.Local
	}
	return &Daily{
		hour:   conf.Hour,
		minute: conf.Minute,
		loc:    loc,
		clock:  clock,
		job:    job,
		name:   conf.Name,
		logger: log.WithFields(map[string]interface{}{"component": "scheduler", "job": conf.Name}),
	}
}

// NextRun returns the first HH:MM in the configured location strictly after now.
func (d *Daily) NextRun(now time.Time) time.Time {
	local := now.In(d.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, d.minute, 0, 0, d.loc)
	}
	return next
}

// Run blocks until ctx is cancelled. Job errors are logged and the loop keeps going.
func (d *Daily) Run(ctx context.Context) {
	for {
		now := d.clock.Now()
		next := d.NextRun(now)
		d.logger.Debug(ctx, "Next scheduled run", map[string]interface{}{"next_run": next})

		timer := d.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info(ctx, "Scheduler stopped", nil)
			return
		case <-timer.Chan():
		}

		start := d.clock.Now()
		if err := d.job(ctx); err != nil {
			d.logger.Error(ctx, "Scheduled job failed", err, nil)
		} else {
			logger.LogPerformance(ctx, d.logger, d.name, d.clock.Since(start), nil)
		}
	}
}
