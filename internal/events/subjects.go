package events

const (
	SubjectStatsSnapshot = "spacify.stats.snapshot"

	StreamName   = "LEAD_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectLeadCreated(leadID string) string     { return "spacify.lead." + leadID + ".created" }
func SubjectLeadScored(leadID string) string      { return "spacify.lead." + leadID + ".scored" }
func SubjectLeadAssigned(leadID string) string    { return "spacify.lead." + leadID + ".assigned" }
func SubjectLeadResponded(leadID string) string   { return "spacify.lead." + leadID + ".responded" }
func SubjectLeadSLABreached(leadID string) string { return "spacify.lead." + leadID + ".sla_breached" }
func SubjectLeadStatus(leadID string) string      { return "spacify.lead." + leadID + ".status" }

func SubjectChatStarted(sessionID string) string   { return "spacify.chat." + sessionID + ".started" }
func SubjectChatCompleted(sessionID string) string { return "spacify.chat." + sessionID + ".completed" }
