package rolecommand

import (
	"github.com/bwmarrin/discordgo"
)

const (
	CommandName             = "role"
	OptionValidationChannel = "channel_validation"
	OptionHomeChannel       = "channel_home"

	PromptValidationRole = "Veuillez mentionner le rôle de validation (par exemple: @role)."
	PromptUniqueRoles    = "Veuillez mentionner les rôles uniques disponibles (par exemple: @role1 @role2 ...)."

	SelectionTitle       = "Sélection de rôle"
	SelectionPlaceholder = "Choisissez votre rôle"
)

// Input is what the slash command invocation carries.
type Input struct {
	GuildID             string
	ChannelID           string
	UserID              string
	ValidationChannelID string
	HomeChannelID       string
}

// Output describes the posted selection prompt.
type Output struct {
	MessageID        string
	HomeChannelID    string
	RoleIDs          []string
	ValidationRoleID string
}

var manageRoles int64 = discordgo.PermissionManageRoles

// ApplicationCommand is the definition registered with the platform.
func ApplicationCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     CommandName,
		Description:              "Lance la sélection de rôle avec validation",
		DefaultMemberPermissions: &manageRoles,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         OptionValidationChannel,
				Description:  "Salon où les demandes de validation sont envoyées",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				Required:     true,
			},
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         OptionHomeChannel,
				Description:  "Salon où le message de sélection est publié",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				Required:     true,
			},
		},
	}
}
