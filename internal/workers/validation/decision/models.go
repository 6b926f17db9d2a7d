package decision

import (
	"role-validation-bot/internal/models"

	"github.com/bwmarrin/discordgo"
)

const (
	AcceptedDM = "Votre validation a été acceptée, bienvenue!"
	DeniedDM   = "Votre demande a été refusée."
)

// Outcomes recorded on the decisions counter.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDenied    = "denied"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
	OutcomePartial   = "partial"
)

// Input is one activation of a decision button.
type Input struct {
	GuildID string
	ActorID string
	Target  models.DecisionTarget
	Message *discordgo.Message
}

// Output summarizes what was applied.
type Output struct {
	Action       models.DecisionAction
	MemberID     string
	GrantedRoles []string
	Nickname     string
	Notified     bool
}
