package events

import "time"

type LeadCreatedEvent struct {
	LeadID       string    `json:"lead_id"`
	State        string    `json:"state"`
	AccidentType string    `json:"accident_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type LeadAssignedEvent struct {
	LeadID     string    `json:"lead_id"`
	AttorneyID string    `json:"attorney_id"`
	FirmName   string    `json:"firm_name"`
	MatchScore int       `json:"match_score"`
	AssignedAt time.Time `json:"assigned_at"`
}

type LeadOverflowEvent struct {
	LeadID     string    `json:"lead_id"`
	Reason     string    `json:"reason"`
	BestScore  int       `json:"best_score,omitempty"`
	EscalateAt time.Time `json:"escalate_at"`
	AlertSent  bool      `json:"alert_sent"`
	PooledAt   time.Time `json:"pooled_at"`
}

type LeadEscalatedEvent struct {
	LeadID      string    `json:"lead_id"`
	Reason      string    `json:"reason"`
	PooledAt    time.Time `json:"pooled_at"`
	EscalatedAt time.Time `json:"escalated_at"`
}

// DispatchStatsEvent is a periodic routing snapshot published on each
// watchdog tick.
type DispatchStatsEvent struct {
	TotalLeads      int       `json:"total_leads"`
	TotalUnassigned int       `json:"total_unassigned"`
	TotalAssigned   int       `json:"total_assigned"`
	TotalOverflow   int       `json:"total_overflow"`
	TotalEscalated  int       `json:"total_escalated"`
	TotalAttorneys  int       `json:"total_attorneys"`
	ObservedAt      time.Time `json:"observed_at"`
}
