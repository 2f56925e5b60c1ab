package loans

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/Custodia-Network/wallet_layer/internal/app/domain/loan"
	"github.com/Custodia-Network/wallet_layer/internal/app/metrics"
	"github.com/Custodia-Network/wallet_layer/pkg/logger"
)

// DefaultSweepSchedule is used when no schedule is configured.
const DefaultSweepSchedule = "@every 1h"

// Monitor periodically sweeps for overdue loans. It only reports: each hit
// is logged and counted, no loan status is changed on the borrower's
// behalf.
type Monitor struct {
	svc      *Service
	log      *logger.Logger
	schedule string
	cron     *cron.Cron
}

// NewMonitor constructs an overdue monitor with the given cron schedule.
func NewMonitor(svc *Service, schedule string, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.NewDefault("loan-monitor")
	}
	if strings.TrimSpace(schedule) == "" {
		schedule = DefaultSweepSchedule
	}
	return &Monitor{svc: svc, log: log, schedule: schedule}
}

// Name implements system.Service.
func (m *Monitor) Name() string { return "loan-monitor" }

// Start schedules the sweep.
func (m *Monitor) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(m.schedule, func() {
		_, _ = m.Sweep(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", m.schedule, err)
	}
	c.Start()
	m.cron = c
	m.log.WithField("schedule", m.schedule).Info("overdue loan monitor started")
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep, bounded by ctx.
func (m *Monitor) Stop(ctx context.Context) error {
	if m.cron == nil {
		return nil
	}
	done := m.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	m.cron = nil
	return nil
}

// Sweep runs one overdue pass and returns the loans it found.
func (m *Monitor) Sweep(ctx context.Context) ([]loan.Overdue, error) {
	overdue, err := m.svc.Overdue(ctx)
	if err != nil {
		m.log.WithError(err).Warn("overdue sweep failed")
		return nil, err
	}
	metrics.SetOverdueLoans(len(overdue))
	for _, ln := range overdue {
		m.log.WithField("loan_id", ln.ID).
			WithField("wallet", ln.WalletAddress).
			WithField("due_date", ln.DueDate).
			Warn("loan past due")
	}
	return overdue, nil
}
