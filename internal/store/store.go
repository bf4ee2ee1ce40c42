package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusAssigned  LeadStatus = "assigned"
	LeadStatusClosed    LeadStatus = "closed"
)

type CapacityStatus string

const (
	CapacityAvailable CapacityStatus = "available"
	CapacityLimited   CapacityStatus = "limited"
	CapacityFull      CapacityStatus = "full"
)

// Lead is an incoming victim case needing attorney assignment.
type Lead struct {
	ID           uuid.UUID  `json:"id"`
	FullName     string     `json:"full_name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	State        string     `json:"state"`
	AccidentType string     `json:"accident_type"`
	Notes        string     `json:"notes,omitempty"`
	Status       LeadStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Attorney is a provider record evaluated for assignment. All scoring reads
// it as-is; only the roster endpoints mutate it.
type Attorney struct {
	ID                 uuid.UUID      `json:"id"`
	FirmName           string         `json:"firm_name"`
	LicensingState     string         `json:"licensing_state"`
	GeographicCoverage string         `json:"geographic_coverage,omitempty"`
	PracticeAreas      string         `json:"practice_areas,omitempty"`
	CapacityStatus     CapacityStatus `json:"capacity_status"`
	YearsExperience    float64        `json:"years_experience"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// CaseRecord is a historical disposition for one attorney. Used in aggregate
// only (win rate, average settlement).
type CaseRecord struct {
	ID             uuid.UUID `json:"id"`
	AttorneyID     uuid.UUID `json:"attorney_id"`
	Status         string    `json:"status"`
	EstimatedValue *float64  `json:"estimated_value,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// OverflowEntry parks a lead that could not be auto-assigned. Created by the
// dispatcher, escalated by the watchdog, never otherwise mutated.
type OverflowEntry struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"lead_id"`
	Reason      string     `json:"reason"`
	CreatedAt   time.Time  `json:"created_at"`
	EscalateAt  time.Time  `json:"escalate_at"`
	EscalatedAt *time.Time `json:"escalated_at,omitempty"`
}

type LeadFilter struct {
	Status *LeadStatus
	State  string
	Limit  int
	Offset int
}

type AttorneyFilter struct {
	Capacity *CapacityStatus
	State    string
	Limit    int
	Offset   int
}

type RouterStats struct {
	TotalLeads      int `json:"total_leads"`
	TotalUnassigned int `json:"total_unassigned"`
	TotalAssigned   int `json:"total_assigned"`
	TotalOverflow   int `json:"total_overflow"`
	TotalEscalated  int `json:"total_escalated"`
	TotalAttorneys  int `json:"total_attorneys"`
}

type Store interface {
	CreateLead(ctx context.Context, lead *Lead) error
	GetLead(ctx context.Context, id uuid.UUID) (*Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	UpdateLead(ctx context.Context, lead *Lead) error

	CreateAttorney(ctx context.Context, a *Attorney) error
	GetAttorney(ctx context.Context, id uuid.UUID) (*Attorney, error)
	ListAttorneys(ctx context.Context, filter AttorneyFilter) ([]*Attorney, error)
	UpdateAttorney(ctx context.Context, a *Attorney) error

	CreateCaseRecord(ctx context.Context, c *CaseRecord) error
	ListCaseRecords(ctx context.Context) ([]*CaseRecord, error)

	CreateOverflowEntry(ctx context.Context, e *OverflowEntry) error
	ListOverflowEntries(ctx context.Context, limit int) ([]*OverflowEntry, error)
	GetDueOverflowEntries(ctx context.Context, now time.Time) ([]*OverflowEntry, error)
	MarkOverflowEscalated(ctx context.Context, id uuid.UUID, at time.Time) error

	GetStats(ctx context.Context) (*RouterStats, error)

	Close() error
}
