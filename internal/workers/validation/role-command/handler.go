package rolecommand

import (
	"context"
	"fmt"
	"time"

	"role-validation-bot/internal/common/codec"
	"role-validation-bot/internal/common/config"
	"role-validation-bot/internal/common/discord"
	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/common/logger"
	"role-validation-bot/internal/models"

	"github.com/bwmarrin/discordgo"
)

const TaskType = "role-command"

// Waiter blocks until a member replies in a channel.
type Waiter interface {
	WaitForReply(ctx context.Context, channelID, userID string, timeout time.Duration) (*discordgo.Message, error)
}

type Handler struct {
	config   *Config
	logger   logger.Logger
	platform discord.Platform
	waiter   Waiter
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Platform     discord.Platform
	Waiter       Waiter
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Platform == nil {
		return nil, fmt.Errorf("%s: platform is required", TaskType)
	}
	if opts.Waiter == nil {
		return nil, fmt.Errorf("%s: reply waiter is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:   cfg,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
		platform: opts.Platform,
		waiter:   opts.Waiter,
	}, nil
}

// Register routes the slash command to the handler.
func (h *Handler) Register(router *discord.Router) {
	if !h.config.Enabled {
		h.logger.Info("Handler is disabled, skipping registration", nil)
		return
	}
	router.HandleCommand(CommandName, discord.Route{Name: TaskType, Timeout: h.config.Timeout, Handler: h})
}

func (h *Handler) Handle(ctx context.Context, reply *discord.Reply, ic *discordgo.InteractionCreate) error {
	input, err := parseInput(ic)
	if err != nil {
		return err
	}

	output, err := h.Execute(ctx, reply, input)
	if err != nil {
		return err
	}

	return reply.Ephemeral(ctx, fmt.Sprintf("Le message de sélection a été publié dans %s.",
		codec.ChannelMention(output.HomeChannelID)))
}

// Execute runs the two prompts and posts the selection prompt. Nothing is
// posted to the home channel unless every step succeeds.
func (h *Handler) Execute(ctx context.Context, reply *discord.Reply, input *Input) (*Output, error) {
	log := logger.FromContext(ctx, h.logger)

	if err := reply.Respond(ctx, ephemeral(PromptValidationRole)); err != nil {
		return nil, err
	}
	validation, err := h.askRoles(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(validation) != 1 {
		return nil, errors.NewMalformedInputError("Vous devez mentionner un seul rôle de validation.",
			fmt.Sprintf("validation role mentions: %d", len(validation)))
	}

	if err := reply.Ephemeral(ctx, PromptUniqueRoles); err != nil {
		return nil, err
	}
	unique, err := h.askRoles(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(unique) < 1 {
		return nil, errors.NewMalformedInputError("Vous devez mentionner au moins un rôle unique.", "unique role mentions: 0")
	}
	if len(unique) > h.config.MaxRoles {
		return nil, errors.NewMalformedInputError(
			fmt.Sprintf("Vous pouvez mentionner au plus %d rôles uniques.", h.config.MaxRoles),
			fmt.Sprintf("unique role mentions: %d", len(unique)))
	}

	state := models.SelectionState{
		RoleIDs:             unique,
		ValidationRoleID:    validation[0],
		ValidationChannelID: input.ValidationChannelID,
	}

	resolved, err := discord.ResolveRoles(h.platform, input.GuildID, append(append([]string{}, unique...), validation[0]))
	if err != nil {
		return nil, err
	}
	roles := resolved[:len(unique)]

	msg, err := h.platform.SendMessage(input.HomeChannelID, SelectionPrompt(state, roles))
	if err != nil {
		stdErr := discord.ClassifyError(err)
		if stdErr.Code == errors.ErrCodePermissionDenied {
			return nil, stdErr.WithMessage(fmt.Sprintf("Je n'ai pas la permission d'envoyer un message dans %s.",
				codec.ChannelMention(input.HomeChannelID)))
		}
		return nil, stdErr
	}

	log.Info("Selection prompt posted", map[string]interface{}{
		"homeChannelId":       input.HomeChannelID,
		"validationChannelId": input.ValidationChannelID,
		"roleCount":           len(unique),
		"messageId":           msg.ID,
	})

	return &Output{
		MessageID:        msg.ID,
		HomeChannelID:    input.HomeChannelID,
		RoleIDs:          unique,
		ValidationRoleID: validation[0],
	}, nil
}

func (h *Handler) askRoles(ctx context.Context, input *Input) ([]string, error) {
	msg, err := h.waiter.WaitForReply(ctx, input.ChannelID, input.UserID, h.config.ReplyTimeout)
	if err != nil {
		return nil, err
	}
	return mentionedRoles(msg), nil
}

// mentionedRoles keeps the order the roles were typed in. Without message
// content access only the unordered mention list is available.
func mentionedRoles(msg *discordgo.Message) []string {
	if ids := codec.ParseRoleMentions(msg.Content); len(ids) > 0 {
		return ids
	}
	seen := make(map[string]bool, len(msg.MentionRoles))
	ids := make([]string, 0, len(msg.MentionRoles))
	for _, id := range msg.MentionRoles {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// SelectionPrompt renders the message members pick their role from.
func SelectionPrompt(state models.SelectionState, roles []*discordgo.Role) *discordgo.MessageSend {
	options := make([]discordgo.SelectMenuOption, 0, len(roles))
	for _, role := range roles {
		options = append(options, discordgo.SelectMenuOption{
			Label: role.Name,
			Value: codec.RoleOptionValue(role.ID),
		})
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       SelectionTitle,
			Description: codec.EncodeSelection(state),
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    codec.SelectCustomID,
					Placeholder: SelectionPlaceholder,
					Options:     options,
				},
			}},
		},
	}
}

func parseInput(ic *discordgo.InteractionCreate) (*Input, error) {
	input := &Input{
		GuildID:   ic.GuildID,
		ChannelID: ic.ChannelID,
		UserID:    discord.InteractionUserID(ic.Interaction),
	}

	for _, opt := range ic.ApplicationCommandData().Options {
		id, _ := opt.Value.(string)
		switch opt.Name {
		case OptionValidationChannel:
			input.ValidationChannelID = id
		case OptionHomeChannel:
			input.HomeChannelID = id
		}
	}

	if input.GuildID == "" {
		return nil, errors.NewMalformedInputError("Cette commande doit être utilisée sur un serveur.", "no guild")
	}
	if !codec.IsSnowflake(input.ValidationChannelID) || !codec.IsSnowflake(input.HomeChannelID) {
		return nil, errors.NewMalformedInputError("Vous devez indiquer le salon de validation et le salon d'accueil.",
			fmt.Sprintf("validation=%q home=%q", input.ValidationChannelID, input.HomeChannelID))
	}
	return input, nil
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	if appConfig.Discord.ReplyTimeout > 0 {
		cfg.ReplyTimeout = config.GetDuration(appConfig.Discord.ReplyTimeout)
	}
	workerCfg := config.GetWorkerConfig(appConfig, TaskType)
	cfg.Enabled = workerCfg.Enabled
	cfg.Timeout = config.GetDuration(workerCfg.Timeout)
	if floor := 2*cfg.ReplyTimeout + 30*time.Second; cfg.Timeout < floor {
		cfg.Timeout = floor
	}
	return cfg
}
