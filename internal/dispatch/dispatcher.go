package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/omegaui/leadrouter/internal/config"
	"github.com/omegaui/leadrouter/internal/crm"
	"github.com/omegaui/leadrouter/internal/events"
	"github.com/omegaui/leadrouter/internal/metrics"
	"github.com/omegaui/leadrouter/internal/notify"
	"github.com/omegaui/leadrouter/internal/scoring"
	"github.com/omegaui/leadrouter/internal/store"
)

// Options tunes a single dispatch invocation.
type Options struct {
	ForceOverflow bool
}

// AssignedAttorney describes the winning candidate in a successful dispatch.
type AssignedAttorney struct {
	ID              uuid.UUID                    `json:"id"`
	FirmName        string                       `json:"firm_name"`
	State           string                       `json:"state"`
	MatchScore      int                          `json:"match_score"`
	ScoreBreakdown  map[string]scoring.Dimension `json:"score_breakdown"`
	Capacity        store.CapacityStatus         `json:"capacity"`
	Specializations string                       `json:"specializations"`
}

// Alternative is a runner-up surfaced alongside the assignment.
type Alternative struct {
	ID             uuid.UUID `json:"id"`
	FirmName       string    `json:"firm_name"`
	MatchScore     int       `json:"match_score"`
	MeetsThreshold bool      `json:"meets_threshold"`
}

// Metadata summarises the candidate field for a successful dispatch.
type Metadata struct {
	TotalCandidates int       `json:"total_candidates"`
	AboveThreshold  int       `json:"above_threshold"`
	AssignedAt      time.Time `json:"assigned_at"`
}

// BestCandidate echoes the top scorer when a dispatch overflows below
// threshold, for operator visibility.
type BestCandidate struct {
	ID             uuid.UUID                    `json:"id"`
	FirmName       string                       `json:"firm_name"`
	Score          int                          `json:"score"`
	ScoreBreakdown map[string]scoring.Dimension `json:"score_breakdown"`
}

// OverflowOutcome describes a lead parked for manual handling.
type OverflowOutcome struct {
	Pooled         bool      `json:"pooled"`
	Reason         string    `json:"reason"`
	LeadID         uuid.UUID `json:"lead_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	EscalationTime time.Time `json:"escalation_time"`
}

// Result is the structured outcome of one dispatch. Exactly one of Assigned
// and Overflow is set: business outcomes are data, never errors.
type Result struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message,omitempty"`
	Assigned      *AssignedAttorney `json:"assigned_attorney,omitempty"`
	Alternatives  []Alternative     `json:"alternatives,omitempty"`
	Metadata      *Metadata         `json:"metadata,omitempty"`
	Overflow      *OverflowOutcome  `json:"overflow,omitempty"`
	AlertSent     bool              `json:"alert_sent,omitempty"`
	BestCandidate *BestCandidate    `json:"best_candidate,omitempty"`
}

// scoredCandidate pairs an attorney with its scoring result during ranking.
type scoredCandidate struct {
	attorney *store.Attorney
	score    scoring.Result
}

// decision is the pure outcome of evaluating a lead against the roster,
// before any side effects run.
type decision struct {
	overflow     bool
	reason       string
	reasonClass  string
	best         *BestCandidate
	winner       *scoredCandidate
	alternatives []scoredCandidate
	eligible     int
	above        int
}

const overflowReasonForced = "Manual overflow requested"
const overflowReasonFullCapacity = "All attorneys at full capacity"
const overflowReasonNoCandidates = "No matching attorneys found"

type Dispatcher struct {
	store    store.Store
	events   events.Client
	notifier notify.Notifier
	crm      crm.Client
	cfg      *config.Config
	logger   *slog.Logger

	// injectable clock for tests
	now func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, ev events.Client, n notify.Notifier, c crm.Client, cfg *config.Config, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    s,
		events:   ev,
		notifier: n,
		crm:      c,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Dispatch routes one lead: fetches the roster and case history, evaluates
// every eligible attorney, and either returns the assignment or parks the
// lead in the overflow pool. Side effects on the overflow path are each
// attempted once and never fail the dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, lead *store.Lead, opts Options) (*Result, error) {
	start := d.now()
	defer func() {
		metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	}()

	if opts.ForceOverflow {
		return d.routeOverflow(ctx, lead, overflowReasonForced, "forced", nil), nil
	}

	// The two reads are unrelated; issue them concurrently.
	var attorneys []*store.Attorney
	var history []*store.CaseRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attorneys, err = d.store.ListAttorneys(gctx, store.AttorneyFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		history, err = d.store.ListCaseRecords(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	dec := evaluate(lead, attorneys, history)
	if dec.overflow {
		return d.routeOverflow(ctx, lead, dec.reason, dec.reasonClass, dec.best), nil
	}

	return d.completeAssignment(ctx, lead, dec), nil
}

// evaluate ranks the eligible roster for a lead. Pure: no I/O, no clock.
func evaluate(lead *store.Lead, attorneys []*store.Attorney, history []*store.CaseRecord) decision {
	var eligible []*store.Attorney
	for _, a := range attorneys {
		if a.CapacityStatus != store.CapacityFull {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		return decision{overflow: true, reason: overflowReasonFullCapacity, reasonClass: "capacity"}
	}

	scored := make([]scoredCandidate, 0, len(eligible))
	for _, a := range eligible {
		scored = append(scored, scoredCandidate{attorney: a, score: scoring.Score(a, lead, history)})
	}
	if len(scored) == 0 {
		return decision{overflow: true, reason: overflowReasonNoCandidates, reasonClass: "no_candidates"}
	}

	// Rank by score; equal totals break deterministically on attorney ID so
	// repeated dispatches agree regardless of roster ordering.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score.Total != scored[j].score.Total {
			return scored[i].score.Total > scored[j].score.Total
		}
		return scored[i].attorney.ID.String() < scored[j].attorney.ID.String()
	})

	top := scored[0]
	if !top.score.MeetsThreshold() {
		return decision{
			overflow:    true,
			reason:      fmt.Sprintf("Best match score (%d) below threshold (%d)", top.score.Total, top.score.Threshold),
			reasonClass: "below_threshold",
			best: &BestCandidate{
				ID:             top.attorney.ID,
				FirmName:       top.attorney.FirmName,
				Score:          top.score.Total,
				ScoreBreakdown: top.score.Breakdown,
			},
		}
	}

	above := 0
	for _, sc := range scored {
		if sc.score.MeetsThreshold() {
			above++
		}
	}

	alts := scored[1:]
	if len(alts) > 3 {
		alts = alts[:3]
	}

	return decision{
		winner:       &top,
		alternatives: alts,
		eligible:     len(eligible),
		above:        above,
	}
}

func (d *Dispatcher) completeAssignment(ctx context.Context, lead *store.Lead, dec decision) *Result {
	winner := dec.winner
	now := d.now()

	result := &Result{
		Success: true,
		Assigned: &AssignedAttorney{
			ID:              winner.attorney.ID,
			FirmName:        winner.attorney.FirmName,
			State:           winner.attorney.LicensingState,
			MatchScore:      winner.score.Total,
			ScoreBreakdown:  winner.score.Breakdown,
			Capacity:        winner.attorney.CapacityStatus,
			Specializations: winner.attorney.PracticeAreas,
		},
		Metadata: &Metadata{
			TotalCandidates: dec.eligible,
			AboveThreshold:  dec.above,
			AssignedAt:      now,
		},
	}
	for _, alt := range dec.alternatives {
		result.Alternatives = append(result.Alternatives, Alternative{
			ID:             alt.attorney.ID,
			FirmName:       alt.attorney.FirmName,
			MatchScore:     alt.score.Total,
			MeetsThreshold: alt.score.MeetsThreshold(),
		})
	}

	metrics.AssignmentsTotal.Inc()

	if d.events != nil {
		_ = d.events.Publish(events.SubjectLeadAssigned(lead.ID.String()), events.LeadAssignedEvent{
			LeadID:     lead.ID.String(),
			AttorneyID: winner.attorney.ID.String(),
			FirmName:   winner.attorney.FirmName,
			MatchScore: winner.score.Total,
			AssignedAt: now,
		})
	}

	if d.crm != nil {
		if err := d.crm.NotifyAssignment(ctx, crm.AssignmentNotice{
			LeadID:     lead.ID.String(),
			AttorneyID: winner.attorney.ID.String(),
			FirmName:   winner.attorney.FirmName,
			MatchScore: winner.score.Total,
		}); err != nil {
			d.logger.Warn("crm forward failed", "lead_id", lead.ID, "error", err)
		}
	}

	d.logger.Info("lead assigned",
		"lead_id", lead.ID,
		"attorney_id", winner.attorney.ID,
		"firm", winner.attorney.FirmName,
		"score", winner.score.Total,
		"eligible", dec.eligible,
		"above_threshold", dec.above,
	)
	return result
}

// routeOverflow parks a lead for manual handling. The lead annotation, the
// pool entry, and the operator alert are independent single attempts; a
// failure in any one is logged and the rest still run.
func (d *Dispatcher) routeOverflow(ctx context.Context, lead *store.Lead, reason, reasonClass string, best *BestCandidate) *Result {
	now := d.now()
	escalateAt := now.Add(d.cfg.EscalationWindow())

	if lead.ID != uuid.Nil {
		lead.Status = store.LeadStatusNew
		lead.Notes = fmt.Sprintf("%s\n\n[OVERFLOW] %s: %s. Awaiting manual assignment.",
			lead.Notes, now.UTC().Format(time.RFC3339), reason)
		if err := d.store.UpdateLead(ctx, lead); err != nil {
			d.logger.Warn("failed to annotate overflow lead", "lead_id", lead.ID, "error", err)
		}

		entry := &store.OverflowEntry{
			LeadID:     lead.ID,
			Reason:     reason,
			EscalateAt: escalateAt,
		}
		if err := d.store.CreateOverflowEntry(ctx, entry); err != nil {
			d.logger.Warn("failed to create overflow entry", "lead_id", lead.ID, "error", err)
		}
	}

	alertSent := false
	if d.notifier != nil {
		err := d.notifier.Send(ctx,
			d.cfg.Email.OperatorAddress,
			notify.AlertSubject(lead.ID),
			notify.AlertBody(lead, reason, now),
		)
		if err != nil {
			d.logger.Warn("failed to send overflow alert", "lead_id", lead.ID, "error", err)
		} else {
			alertSent = true
		}
	}

	metrics.OverflowsTotal.WithLabelValues(reasonClass).Inc()

	if d.events != nil {
		evt := events.LeadOverflowEvent{
			LeadID:     lead.ID.String(),
			Reason:     reason,
			EscalateAt: escalateAt,
			AlertSent:  alertSent,
			PooledAt:   now,
		}
		if best != nil {
			evt.BestScore = best.Score
		}
		_ = d.events.Publish(events.SubjectLeadOverflow(lead.ID.String()), evt)
	}

	d.logger.Info("lead routed to overflow",
		"lead_id", lead.ID,
		"reason", reason,
		"alert_sent", alertSent,
		"escalate_at", escalateAt,
	)

	return &Result{
		Success: false,
		Message: reason,
		Overflow: &OverflowOutcome{
			Pooled:         true,
			Reason:         reason,
			LeadID:         lead.ID,
			Timestamp:      now,
			EscalationTime: escalateAt,
		},
		AlertSent:     alertSent,
		BestCandidate: best,
	}
}
