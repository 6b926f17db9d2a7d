package selectrole

import (
	"context"
	"fmt"

	"role-validation-bot/internal/common/codec"
	"role-validation-bot/internal/common/config"
	"role-validation-bot/internal/common/discord"
	"role-validation-bot/internal/common/logger"

	"github.com/bwmarrin/discordgo"
)

const TaskType = "select-role"

type Handler struct {
	config *Config
	logger logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
}

func (h *Handler) Register(router *discord.Router) {
	if !h.config.Enabled {
		h.logger.Info("Handler is disabled, skipping registration", nil)
		return
	}
	router.HandleComponent(discord.Exact(codec.SelectCustomID), discord.Route{Name: TaskType, Timeout: h.config.Timeout, Handler: h})
}

func (h *Handler) Handle(ctx context.Context, reply *discord.Reply, ic *discordgo.InteractionCreate) error {
	output, err := h.Execute(ctx, ic)
	if err != nil {
		return err
	}
	return reply.Modal(ctx, VerificationModal(output.FormID))
}

// Execute recovers the validation channel from the selection prompt. A prompt
// that no longer decodes opens no form.
func (h *Handler) Execute(ctx context.Context, ic *discordgo.InteractionCreate) (*Output, error) {
	description, err := discord.EmbedDescription(ic.Message)
	if err != nil {
		return nil, err
	}
	state, err := codec.DecodeSelection(description)
	if err != nil {
		return nil, err
	}

	var selected string
	if values := ic.MessageComponentData().Values; len(values) > 0 {
		selected, _ = codec.ParseRoleOptionValue(values[0])
	}

	logger.FromContext(ctx, h.logger).Debug("Opening verification form", map[string]interface{}{
		"validationChannelId": state.ValidationChannelID,
		"selectedRoleId":      selected,
	})

	return &Output{
		FormID:              codec.FormID(state.ValidationChannelID),
		ValidationChannelID: state.ValidationChannelID,
		SelectedRoleID:      selected,
	}, nil
}

// VerificationModal renders the first/last name form.
func VerificationModal(formID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: formID,
		Title:    ModalTitle,
		Components: []discordgo.MessageComponent{
			textRow(FirstNameInputID, FirstNameLabel),
			textRow(LastNameInputID, LastNameLabel),
		},
	}
}

func textRow(id, label string) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:  id,
			Label:     label,
			Style:     discordgo.TextInputShort,
			Required:  true,
			MinLength: 1,
			MaxLength: MaxNameLength,
		},
	}}
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
