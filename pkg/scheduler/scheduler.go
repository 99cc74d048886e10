// Package scheduler runs a maintenance task once a day at a fixed local time.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fleetbook/pkg/clock"
	"fleetbook/pkg/logger"
)

// Task is one scheduled run. A failed run is not retried; the next tick
// simply runs it again.
type Task func(ctx context.Context) error

type Daily struct {
	name   string
	at     string
	task   Task
	clk    clock.Clock
	log    *logger.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewDaily schedules task every day at the given "HH:MM" local time.
// The time string must already be validated by configuration loading.
func NewDaily(name, at string, task Task, clk clock.Clock, log *logger.Logger) *Daily {
	return &Daily{
		name:   name,
		at:     at,
		task:   task,
		clk:    clk,
		log:    log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (d *Daily) Start() {
	go d.loop()
	d.log.Info("Daily task scheduled", "task", d.name, "at", d.at)
}

func (d *Daily) Stop() {
	close(d.stopCh)
	<-d.doneCh
}

func (d *Daily) loop() {
	defer close(d.doneCh)

	for {
		now := d.clk.Now()
		next, err := NextRun(now, d.at)
		if err != nil {
			d.log.Error("Invalid schedule time, task disabled", "task", d.name, "at", d.at, "error", err)
			return
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			d.run()
		case <-d.stopCh:
			timer.Stop()
			return
		}
	}
}

func (d *Daily) run() {
	start := d.clk.Now()
	d.log.Info("Scheduled task started", "task", d.name)

	if err := d.task(context.Background()); err != nil {
		d.log.Error("Scheduled task failed", "task", d.name, "error", err)
		return
	}

	d.log.Info("Scheduled task completed",
		"task", d.name,
		"duration_ms", d.clk.Now().Sub(start).Milliseconds(),
	)
}

// NextRun returns the first instant strictly after now that matches the
// "HH:MM" wall time in now's location.
func NextRun(now time.Time, at string) (time.Time, error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM", at)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid minute in %q", at)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
