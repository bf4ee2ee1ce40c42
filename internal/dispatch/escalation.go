package dispatch

import (
	"context"
	"time"

	"github.com/omegaui/leadrouter/internal/events"
	"github.com/omegaui/leadrouter/internal/metrics"
	"github.com/omegaui/leadrouter/internal/notify"
	"github.com/omegaui/leadrouter/internal/store"
)

// Start launches the overflow escalation watchdog.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go d.escalationLoop(ctx)
}

func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
	d.wg.Wait()
}

func (d *Dispatcher) escalationLoop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.WatchdogTick())
	defer ticker.Stop()

	for {
		select {
		case <-d.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.checkEscalations(ctx)
			d.publishStats(ctx)
		}
	}
}

// publishStats emits a routing snapshot on the stats subject once per tick.
func (d *Dispatcher) publishStats(ctx context.Context) {
	if d.events == nil {
		return
	}
	stats, err := d.store.GetStats(ctx)
	if err != nil {
		d.logger.Warn("failed to get router stats", "error", err)
		return
	}
	_ = d.events.Publish(events.SubjectDispatchStats, events.DispatchStatsEvent{
		TotalLeads:      stats.TotalLeads,
		TotalUnassigned: stats.TotalUnassigned,
		TotalAssigned:   stats.TotalAssigned,
		TotalOverflow:   stats.TotalOverflow,
		TotalEscalated:  stats.TotalEscalated,
		TotalAttorneys:  stats.TotalAttorneys,
		ObservedAt:      d.now(),
	})
}

// checkEscalations re-alerts on pooled leads that passed their deadline
// without a manual assignment.
func (d *Dispatcher) checkEscalations(ctx context.Context) {
	now := d.now()
	entries, err := d.store.GetDueOverflowEntries(ctx, now)
	if err != nil {
		d.logger.Error("failed to get due overflow entries", "error", err)
		return
	}

	for _, entry := range entries {
		lead, err := d.store.GetLead(ctx, entry.LeadID)
		if err != nil || lead == nil {
			d.logger.Warn("overflow entry without lead", "entry_id", entry.ID, "lead_id", entry.LeadID, "error", err)
			continue
		}

		// A lead assigned manually after pooling no longer needs escalation.
		if lead.Status == store.LeadStatusAssigned {
			if err := d.store.MarkOverflowEscalated(ctx, entry.ID, now); err != nil {
				d.logger.Warn("failed to retire overflow entry", "entry_id", entry.ID, "error", err)
			}
			continue
		}

		if d.notifier != nil {
			err := d.notifier.Send(ctx,
				d.cfg.Email.OperatorAddress,
				notify.AlertSubject(lead.ID),
				notify.EscalationBody(lead, entry),
			)
			if err != nil {
				d.logger.Warn("failed to send escalation alert", "lead_id", lead.ID, "error", err)
			}
		}

		if err := d.store.MarkOverflowEscalated(ctx, entry.ID, now); err != nil {
			d.logger.Error("failed to mark overflow escalated", "entry_id", entry.ID, "error", err)
			continue
		}

		metrics.EscalationsTotal.Inc()

		if d.events != nil {
			_ = d.events.Publish(events.SubjectLeadEscalated(lead.ID.String()), events.LeadEscalatedEvent{
				LeadID:      lead.ID.String(),
				Reason:      entry.Reason,
				PooledAt:    entry.CreatedAt,
				EscalatedAt: now,
			})
		}

		d.logger.Warn("overflow lead escalated", "lead_id", lead.ID, "pooled_at", entry.CreatedAt, "reason", entry.Reason)
	}
}
