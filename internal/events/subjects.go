package events

const (
	SubjectDispatchStats = "intake.dispatch.stats"

	StreamName   = "LEADROUTER_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectLeadCreated(leadID string) string   { return "intake.lead." + leadID + ".created" }
func SubjectLeadAssigned(leadID string) string  { return "intake.lead." + leadID + ".assigned" }
func SubjectLeadOverflow(leadID string) string  { return "intake.lead." + leadID + ".overflow" }
func SubjectLeadEscalated(leadID string) string { return "intake.lead." + leadID + ".escalated" }
