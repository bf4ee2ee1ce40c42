package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/omegaui/leadrouter/internal/config"
	"github.com/omegaui/leadrouter/internal/crm"
	"github.com/omegaui/leadrouter/internal/events"
	"github.com/omegaui/leadrouter/internal/store"
)

// Mock implementations

type mockStore struct {
	leads     map[uuid.UUID]*store.Lead
	attorneys []*store.Attorney
	cases     []*store.CaseRecord
	overflow  []*store.OverflowEntry
	escalated []uuid.UUID
}

func newMockStore() *mockStore {
	return &mockStore{leads: make(map[uuid.UUID]*store.Lead)}
}

func (m *mockStore) CreateLead(_ context.Context, l *store.Lead) error {
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	m.leads[l.ID] = l
	return nil
}
func (m *mockStore) GetLead(_ context.Context, id uuid.UUID) (*store.Lead, error) {
	return m.leads[id], nil
}
func (m *mockStore) ListLeads(_ context.Context, _ store.LeadFilter) ([]*store.Lead, error) {
	var out []*store.Lead
	for _, l := range m.leads {
		out = append(out, l)
	}
	return out, nil
}
func (m *mockStore) UpdateLead(_ context.Context, l *store.Lead) error {
	m.leads[l.ID] = l
	return nil
}
func (m *mockStore) CreateAttorney(_ context.Context, a *store.Attorney) error {
	a.ID = uuid.New()
	m.attorneys = append(m.attorneys, a)
	return nil
}
func (m *mockStore) GetAttorney(_ context.Context, id uuid.UUID) (*store.Attorney, error) {
	for _, a := range m.attorneys {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}
func (m *mockStore) ListAttorneys(_ context.Context, _ store.AttorneyFilter) ([]*store.Attorney, error) {
	return m.attorneys, nil
}
func (m *mockStore) UpdateAttorney(_ context.Context, a *store.Attorney) error { return nil }
func (m *mockStore) CreateCaseRecord(_ context.Context, c *store.CaseRecord) error {
	c.ID = uuid.New()
	m.cases = append(m.cases, c)
	return nil
}
func (m *mockStore) ListCaseRecords(_ context.Context) ([]*store.CaseRecord, error) {
	return m.cases, nil
}
func (m *mockStore) CreateOverflowEntry(_ context.Context, e *store.OverflowEntry) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.overflow = append(m.overflow, e)
	return nil
}
func (m *mockStore) ListOverflowEntries(_ context.Context, _ int) ([]*store.OverflowEntry, error) {
	return m.overflow, nil
}
func (m *mockStore) GetDueOverflowEntries(_ context.Context, now time.Time) ([]*store.OverflowEntry, error) {
	var out []*store.OverflowEntry
	for _, e := range m.overflow {
		if e.EscalatedAt == nil && !e.EscalateAt.After(now) {
			out = append(out, e)
		}
	}
	return out, nil
}
func (m *mockStore) MarkOverflowEscalated(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, e := range m.overflow {
		if e.ID == id {
			t := at
			e.EscalatedAt = &t
		}
	}
	m.escalated = append(m.escalated, id)
	return nil
}
func (m *mockStore) GetStats(_ context.Context) (*store.RouterStats, error) {
	return &store.RouterStats{
		TotalLeads:    len(m.leads),
		TotalOverflow: len(m.overflow),
	}, nil
}
func (m *mockStore) Close() error { return nil }

type mockEvents struct {
	published []struct {
		subject string
		data    interface{}
	}
}

func (m *mockEvents) Publish(subject string, data interface{}) error {
	m.published = append(m.published, struct {
		subject string
		data    interface{}
	}{subject, data})
	return nil
}
func (m *mockEvents) Subscribe(_ string, _ func(string, []byte)) error { return nil }
func (m *mockEvents) Close()                                           {}

type mockNotifier struct {
	sent []struct{ to, subject, body string }
	err  error
}

func (m *mockNotifier) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, struct{ to, subject, body string }{to, subject, body})
	return nil
}

type mockCRM struct {
	notices []crm.AssignmentNotice
	err     error
}

func (m *mockCRM) NotifyAssignment(_ context.Context, n crm.AssignmentNotice) error {
	if m.err != nil {
		return m.err
	}
	m.notices = append(m.notices, n)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Email: config.EmailConfig{
			Sender:          "alerts@test.local",
			OperatorAddress: "ops@test.local",
		},
		Overflow: config.OverflowConfig{
			EscalationWindowHours: 24,
			WatchdogTickMs:        100,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(s store.Store, n *mockNotifier, ev *mockEvents, c *mockCRM) *Dispatcher {
	return New(s, ev, n, c, testConfig(), testLogger())
}

func makeLead(state, accidentType, notes string) *store.Lead {
	return &store.Lead{
		ID:           uuid.New(),
		FullName:     "Test Victim",
		State:        state,
		AccidentType: accidentType,
		Notes:        notes,
		Status:       store.LeadStatusNew,
	}
}

func strongAttorney(state, areas string) *store.Attorney {
	return &store.Attorney{
		ID:              uuid.New(),
		FirmName:        "Strong Firm",
		LicensingState:  state,
		PracticeAreas:   areas,
		CapacityStatus:  store.CapacityAvailable,
		YearsExperience: 12,
	}
}

func TestDispatchAssignsTopCandidate(t *testing.T) {
	s := newMockStore()
	winner := strongAttorney("CA", "car_accident, truck_accident")
	weaker := &store.Attorney{
		ID:              uuid.New(),
		FirmName:        "Weaker Firm",
		LicensingState:  "NV",
		CapacityStatus:  store.CapacityLimited,
		YearsExperience: 3,
	}
	s.attorneys = []*store.Attorney{weaker, winner}

	notifier := &mockNotifier{}
	ev := &mockEvents{}
	c := &mockCRM{}
	d := newTestDispatcher(s, notifier, ev, c)

	lead := makeLead("CA", "car_accident", "rear-ended at a light")
	res, err := d.Dispatch(context.Background(), lead, Options{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got overflow: %s", res.Message)
	}
	if res.Assigned == nil || res.Assigned.ID != winner.ID {
		t.Fatalf("expected winner %s assigned, got %+v", winner.ID, res.Assigned)
	}
	// 30 state + 25 specialization + 20 capacity + 18 experience + 0 outcomes
	if res.Assigned.MatchScore != 93 {
		t.Errorf("expected score 93, got %d", res.Assigned.MatchScore)
	}
	if res.Metadata == nil || res.Metadata.TotalCandidates != 2 || res.Metadata.AboveThreshold != 1 {
		t.Errorf("unexpected metadata: %+v", res.Metadata)
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0].ID != weaker.ID {
		t.Errorf("expected weaker firm as alternative, got %+v", res.Alternatives)
	}
	if res.Alternatives[0].MeetsThreshold {
		t.Errorf("weaker firm should be below threshold")
	}
	if len(c.notices) != 1 || c.notices[0].AttorneyID != winner.ID.String() {
		t.Errorf("expected crm notice for winner, got %+v", c.notices)
	}
	if len(ev.published) != 1 || !strings.Contains(ev.published[0].subject, ".assigned") {
		t.Errorf("expected assigned event, got %+v", ev.published)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("no alert should be sent on assignment")
	}
}

func TestDispatchCapsAlternativesAtThree(t *testing.T) {
	s := newMockStore()
	for i := 0; i < 6; i++ {
		s.attorneys = append(s.attorneys, strongAttorney("CA", "car_accident"))
	}
	d := newTestDispatcher(s, &mockNotifier{}, &mockEvents{}, &mockCRM{})

	res, err := d.Dispatch(context.Background(), makeLead("CA", "car_accident", ""), Options{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %s", res.Message)
	}
	if len(res.Alternatives) != 3 {
		t.Errorf("expected 3 alternatives, got %d", len(res.Alternatives))
	}
	if res.Metadata.TotalCandidates != 6 || res.Metadata.AboveThreshold != 6 {
		t.Errorf("unexpected metadata: %+v", res.Metadata)
	}
}

func TestDispatchTieBreaksOnAttorneyID(t *testing.T) {
	a := strongAttorney("CA", "car_accident")
	b := strongAttorney("CA", "car_accident")
	lowID, highID := a, b
	if b.ID.String() < a.ID.String() {
		lowID, highID = b, a
	}

	for _, order := range [][]*store.Attorney{{lowID, highID}, {highID, lowID}} {
		s := newMockStore()
		s.attorneys = order
		d := newTestDispatcher(s, &mockNotifier{}, &mockEvents{}, &mockCRM{})

		res, err := d.Dispatch(context.Background(), makeLead("CA", "car_accident", ""), Options{})
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if res.Assigned.ID != lowID.ID {
			t.Errorf("expected deterministic winner %s, got %s", lowID.ID, res.Assigned.ID)
		}
	}
}

func TestDispatchForcedOverflow(t *testing.T) {
	s := newMockStore()
	s.attorneys = []*store.Attorney{strongAttorney("CA", "car_accident")}
	notifier := &mockNotifier{}
	ev := &mockEvents{}
	d := newTestDispatcher(s, notifier, ev, &mockCRM{})

	lead := makeLead("CA", "car_accident", "original notes")
	s.leads[lead.ID] = lead

	res, err := d.Dispatch(context.Background(), lead, Options{ForceOverflow: true})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Success {
		t.Fatal("forced overflow must not assign")
	}
	if res.Overflow == nil || !res.Overflow.Pooled {
		t.Fatalf("expected pooled overflow, got %+v", res.Overflow)
	}
	if res.Overflow.Reason != "Manual overflow requested" {
		t.Errorf("unexpected reason: %s", res.Overflow.Reason)
	}
	if !res.AlertSent {
		t.Error("expected alert sent")
	}
	if len(s.overflow) != 1 {
		t.Fatalf("expected 1 overflow entry, got %d", len(s.overflow))
	}
	window := res.Overflow.EscalationTime.Sub(res.Overflow.Timestamp)
	if window != 24*time.Hour {
		t.Errorf("expected 24h escalation window, got %v", window)
	}
	updated := s.leads[lead.ID]
	if !strings.Contains(updated.Notes, "original notes") || !strings.Contains(updated.Notes, "[OVERFLOW]") {
		t.Errorf("overflow annotation should append to notes, got %q", updated.Notes)
	}
	if !strings.Contains(updated.Notes, "Awaiting manual assignment.") {
		t.Errorf("annotation missing trailer, got %q", updated.Notes)
	}
	if len(ev.published) != 1 || !strings.Contains(ev.published[0].subject, ".overflow") {
		t.Errorf("expected overflow event, got %+v", ev.published)
	}
}

func TestDispatchOverflowAllFullCapacity(t *testing.T) {
	s := newMockStore()
	for i := 0; i < 3; i++ {
		a := strongAttorney("CA", "car_accident")
		a.CapacityStatus = store.CapacityFull
		s.attorneys = append(s.attorneys, a)
	}
	d := newTestDispatcher(s, &mockNotifier{}, &mockEvents{}, &mockCRM{})

	lead := makeLead("CA", "car_accident", "")
	s.leads[lead.ID] = lead

	res, err := d.Dispatch(context.Background(), lead, Options{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Success {
		t.Fatal("expected overflow")
	}
	if res.Overflow.Reason != "All attorneys at full capacity" {
		t.Errorf("unexpected reason: %s", res.Overflow.Reason)
	}
	if res.BestCandidate != nil {
		t.Errorf("no best candidate when nobody was scored, got %+v", res.BestCandidate)
	}
}

func TestDispatchOverflowBelowThreshold(t *testing.T) {
	s := newMockStore()
	// Coverage state + limited capacity + 10 years: 15 + 0 + 5 + 15 = 35.
	s.attorneys = []*store.Attorney{{
		ID:                 uuid.New(),
		FirmName:           "Marginal Firm",
		LicensingState:     "OR",
		GeographicCoverage: "CA, WA",
		PracticeAreas:      "medical_malpractice",
		CapacityStatus:     store.CapacityLimited,
		YearsExperience:    10,
	}}
	d := newTestDispatcher(s, &mockNotifier{}, &mockEvents{}, &mockCRM{})

	lead := makeLead("CA", "car_accident", "")
	s.leads[lead.ID] = lead

	res, err := d.Dispatch(context.Background(), lead, Options{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Success {
		t.Fatal("expected overflow")
	}
	if res.Overflow.Reason != "Best match score (35) below threshold (40)" {
		t.Errorf("unexpected reason: %s", res.Overflow.Reason)
	}
	if res.BestCandidate == nil || res.BestCandidate.Score != 35 {
		t.Fatalf("expected best candidate echoed with score 35, got %+v", res.BestCandidate)
	}
	if res.BestCandidate.FirmName != "Marginal Firm" {
		t.Errorf("unexpected best candidate firm: %s", res.BestCandidate.FirmName)
	}
	if len(res.BestCandidate.ScoreBreakdown) == 0 {
		t.Error("best candidate should carry its breakdown")
	}
}

func TestDispatchAlertFailureDoesNotFailDispatch(t *testing.T) {
	s := newMockStore()
	d := newTestDispatcher(s, &mockNotifier{err: errors.New("ses unavailable")}, &mockEvents{}, &mockCRM{})

	lead := makeLead("CA", "car_accident", "")
	s.leads[lead.ID] = lead

	res, err := d.Dispatch(context.Background(), lead, Options{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Success {
		t.Fatal("expected overflow")
	}
	if res.AlertSent {
		t.Error("alert_sent must reflect the failed send")
	}
	if len(s.overflow) != 1 {
		t.Errorf("overflow entry should still be created, got %d", len(s.overflow))
	}
}

func TestDispatchCRMFailureDoesNotFailAssignment(t *testing.T) {
	s := newMockStore()
	s.attorneys = []*store.Attorney{strongAttorney("CA", "car_accident")}
	d := newTestDispatcher(s, &mockNotifier{}, &mockEvents{}, &mockCRM{err: errors.New("webhook down")})

	res, err := d.Dispatch(context.Background(), makeLead("CA", "car_accident", ""), Options{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("assignment should survive crm failure, got %s", res.Message)
	}
}

func TestCheckEscalations(t *testing.T) {
	s := newMockStore()
	notifier := &mockNotifier{}
	ev := &mockEvents{}
	d := newTestDispatcher(s, notifier, ev, &mockCRM{})

	now := time.Now()
	d.now = func() time.Time { return now }

	due := makeLead("CA", "car_accident", "")
	s.leads[due.ID] = due
	s.overflow = append(s.overflow, &store.OverflowEntry{
		ID:         uuid.New(),
		LeadID:     due.ID,
		Reason:     "All attorneys at full capacity",
		CreatedAt:  now.Add(-25 * time.Hour),
		EscalateAt: now.Add(-time.Hour),
	})

	notDue := makeLead("WA", "truck_accident", "")
	s.leads[notDue.ID] = notDue
	s.overflow = append(s.overflow, &store.OverflowEntry{
		ID:         uuid.New(),
		LeadID:     notDue.ID,
		Reason:     "All attorneys at full capacity",
		CreatedAt:  now.Add(-time.Hour),
		EscalateAt: now.Add(23 * time.Hour),
	})

	d.checkEscalations(context.Background())

	if len(s.escalated) != 1 || s.escalated[0] != s.overflow[0].ID {
		t.Fatalf("expected only the due entry escalated, got %v", s.escalated)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("expected 1 escalation email, got %d", len(notifier.sent))
	}
	if len(ev.published) != 1 || !strings.Contains(ev.published[0].subject, ".escalated") {
		t.Errorf("expected escalated event, got %+v", ev.published)
	}
}

func TestPublishStats(t *testing.T) {
	s := newMockStore()
	ev := &mockEvents{}
	d := newTestDispatcher(s, &mockNotifier{}, ev, &mockCRM{})

	now := time.Now()
	d.now = func() time.Time { return now }

	lead := makeLead("CA", "car_accident", "")
	s.leads[lead.ID] = lead
	s.overflow = append(s.overflow, &store.OverflowEntry{
		ID:         uuid.New(),
		LeadID:     lead.ID,
		Reason:     "All attorneys at full capacity",
		EscalateAt: now.Add(24 * time.Hour),
	})

	d.publishStats(context.Background())

	if len(ev.published) != 1 {
		t.Fatalf("expected 1 stats event, got %d", len(ev.published))
	}
	if ev.published[0].subject != events.SubjectDispatchStats {
		t.Errorf("unexpected subject: %s", ev.published[0].subject)
	}
	snapshot, ok := ev.published[0].data.(events.DispatchStatsEvent)
	if !ok {
		t.Fatalf("unexpected payload type: %T", ev.published[0].data)
	}
	if snapshot.TotalLeads != 1 || snapshot.TotalOverflow != 1 {
		t.Errorf("unexpected snapshot: %+v", snapshot)
	}
	if !snapshot.ObservedAt.Equal(now) {
		t.Errorf("expected observed_at %v, got %v", now, snapshot.ObservedAt)
	}
}

func TestPublishStatsWithoutEvents(t *testing.T) {
	s := newMockStore()
	d := New(s, nil, nil, nil, testConfig(), testLogger())

	// Must be a no-op, not a panic.
	d.publishStats(context.Background())
}

func TestCheckEscalationsSkipsManuallyAssigned(t *testing.T) {
	s := newMockStore()
	notifier := &mockNotifier{}
	d := newTestDispatcher(s, notifier, &mockEvents{}, &mockCRM{})

	now := time.Now()
	d.now = func() time.Time { return now }

	lead := makeLead("CA", "car_accident", "")
	lead.Status = store.LeadStatusAssigned
	s.leads[lead.ID] = lead
	s.overflow = append(s.overflow, &store.OverflowEntry{
		ID:         uuid.New(),
		LeadID:     lead.ID,
		Reason:     "All attorneys at full capacity",
		CreatedAt:  now.Add(-25 * time.Hour),
		EscalateAt: now.Add(-time.Hour),
	})

	d.checkEscalations(context.Background())

	if len(notifier.sent) != 0 {
		t.Errorf("assigned lead must not be escalated, got %d emails", len(notifier.sent))
	}
	if s.overflow[0].EscalatedAt == nil {
		t.Error("entry should be retired so it is not re-checked")
	}
}
