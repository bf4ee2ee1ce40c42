package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omegaui/leadrouter/internal/store"
)

// AlertSubject builds the operator email subject for a pooled lead.
func AlertSubject(leadID uuid.UUID) string {
	ref := "NEW"
	if leadID != uuid.Nil {
		ref = leadID.String()[:8]
	}
	return fmt.Sprintf("[LEAD ROUTER] Manual Assignment Required - Lead #%s", ref)
}

// AlertBody renders the manual-assignment alert for a pooled lead.
func AlertBody(lead *store.Lead, reason string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A lead requires manual assignment.\n\n")
	fmt.Fprintf(&b, "REASON: %s\n\n", reason)
	fmt.Fprintf(&b, "LEAD DETAILS:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orUnknown(lead.FullName))
	fmt.Fprintf(&b, "- Phone: %s\n", orUnknown(lead.Phone))
	fmt.Fprintf(&b, "- State: %s\n", orUnknown(lead.State))
	fmt.Fprintf(&b, "- Accident Type: %s\n", orUnknown(lead.AccidentType))
	fmt.Fprintf(&b, "- Date Submitted: %s\n\n", now.Format(time.RFC1123))
	fmt.Fprintf(&b, "ACTION REQUIRED:\n")
	fmt.Fprintf(&b, "Please log into the admin dashboard to manually assign this lead to an appropriate attorney.\n\n")
	fmt.Fprintf(&b, "If not assigned within 24 hours, the lead will be escalated.\n")
	return b.String()
}

// EscalationBody renders the watchdog reminder for an overdue pooled lead.
func EscalationBody(lead *store.Lead, entry *store.OverflowEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A pooled lead has passed its escalation deadline without assignment.\n\n")
	fmt.Fprintf(&b, "ORIGINAL REASON: %s\n", entry.Reason)
	fmt.Fprintf(&b, "POOLED AT: %s\n\n", entry.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "LEAD DETAILS:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orUnknown(lead.FullName))
	fmt.Fprintf(&b, "- Phone: %s\n", orUnknown(lead.Phone))
	fmt.Fprintf(&b, "- State: %s\n\n", orUnknown(lead.State))
	fmt.Fprintf(&b, "Assign this lead immediately.\n")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
