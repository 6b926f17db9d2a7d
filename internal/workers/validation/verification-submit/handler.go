package verificationsubmit

import (
	"context"
	"fmt"
	"strings"

	"role-validation-bot/internal/common/codec"
	"role-validation-bot/internal/common/config"
	"role-validation-bot/internal/common/discord"
	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/common/logger"
	"role-validation-bot/internal/models"
	selectrole "role-validation-bot/internal/workers/validation/select-role"

	"github.com/bwmarrin/discordgo"
)

const TaskType = "verification-submit"

type Handler struct {
	config   *Config
	logger   logger.Logger
	platform discord.Platform
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Platform     discord.Platform
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

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:   cfg,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
		platform: opts.Platform,
	}, nil
}

func (h *Handler) Register(router *discord.Router) {
	if !h.config.Enabled {
		h.logger.Info("Handler is disabled, skipping registration", nil)
		return
	}
	router.HandleModal(codec.IsFormID, discord.Route{Name: TaskType, Timeout: h.config.Timeout, Handler: h})
}

func (h *Handler) Handle(ctx context.Context, reply *discord.Reply, ic *discordgo.InteractionCreate) error {
	input, err := parseInput(ic)
	if err != nil {
		return err
	}
	if err := validateInput(input); err != nil {
		return err
	}

	if _, err := h.Execute(ctx, input); err != nil {
		return err
	}
	return reply.Ephemeral(ctx, Acknowledgement)
}

// Execute posts the decision request to the validation channel, carrying the
// role set of the selection prompt forward.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	state, err := codec.DecodeSelection(input.SelectionText)
	if err != nil {
		return nil, err
	}

	if _, err := h.platform.Channel(input.ValidationChannelID); err != nil {
		stdErr := discord.ClassifyError(err)
		if stdErr.Code == errors.ErrCodeNotFound {
			return nil, stdErr.WithMessage("Le salon de validation n'existe plus. Veuillez contacter un modérateur.")
		}
		return nil, stdErr
	}

	request := models.DecisionRequest{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		MemberID:         input.MemberID,
		RoleIDs:          state.RoleIDs,
		ValidationRoleID: state.ValidationRoleID,
	}

	msg, err := h.platform.SendMessage(input.ValidationChannelID, DecisionRequestMessage(request, input.ValidationChannelID))
	if err != nil {
		stdErr := discord.ClassifyError(err)
		if stdErr.Code == errors.ErrCodePermissionDenied {
			return nil, stdErr.WithMessage("Je n'ai pas la permission d'envoyer la demande dans le salon de validation.")
		}
		return nil, stdErr
	}

	logger.FromContext(ctx, h.logger).Info("Decision request posted", map[string]interface{}{
		"memberId":            input.MemberID,
		"validationChannelId": input.ValidationChannelID,
		"messageId":           msg.ID,
	})

	return &Output{MessageID: msg.ID, ValidationChannelID: input.ValidationChannelID}, nil
}

// DecisionRequestMessage renders the request staff accept or deny.
func DecisionRequestMessage(request models.DecisionRequest, validationChannelID string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       RequestTitle,
			Description: codec.EncodeDecision(request),
			Color:       RequestColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    AcceptLabel,
					Style:    discordgo.SuccessButton,
					CustomID: codec.DecisionID(models.DecisionAccept, request.MemberID, validationChannelID),
				},
				discordgo.Button{
					Label:    DenyLabel,
					Style:    discordgo.DangerButton,
					CustomID: codec.DecisionID(models.DecisionDeny, request.MemberID, validationChannelID),
				},
			}},
		},
	}
}

func parseInput(ic *discordgo.InteractionCreate) (*Input, error) {
	data := ic.ModalSubmitData()
	channelID, err := codec.ParseFormID(data.CustomID)
	if err != nil {
		return nil, err
	}

	selection, err := discord.EmbedDescription(ic.Message)
	if err != nil {
		return nil, err
	}

	values := discord.TextInputValues(data.Components)
	return &Input{
		GuildID:             ic.GuildID,
		MemberID:            discord.InteractionUserID(ic.Interaction),
		ValidationChannelID: channelID,
		FirstName:           strings.TrimSpace(values[selectrole.FirstNameInputID]),
		LastName:            strings.TrimSpace(values[selectrole.LastNameInputID]),
		SelectionText:       selection,
	}, nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil {
		workerCfg := config.GetWorkerConfig(appConfig, TaskType)
		cfg.Enabled = workerCfg.Enabled
		if workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
	}
	return cfg
}
