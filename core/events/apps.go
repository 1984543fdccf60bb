package events

const (
	EventAppRegistered         = "apps.registered"
	EventAppEligibilityUpdated = "apps.eligibility_updated"
	EventTeamPercentageUpdated = "apps.team_percentage_updated"
)
