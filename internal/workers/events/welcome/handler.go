package welcome

import (
	"context"
	"fmt"
	"time"

	"role-validation-bot/internal/common/codec"
	"role-validation-bot/internal/common/config"
	"role-validation-bot/internal/common/discord"
	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/common/logger"
	"role-validation-bot/internal/common/metrics"

	"github.com/bwmarrin/discordgo"
)

const TaskType = "welcome"

// Greeting is the message posted for a new member.
func Greeting(memberID string) string {
	return fmt.Sprintf("Bienvenue sur le serveur, %s ! 🎉 Nous sommes ravis de t'avoir parmi nous !",
		codec.UserMention(memberID))
}

// Output reports whether a greeting was posted.
type Output struct {
	Sent      bool
	MessageID string
}

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

// Register subscribes the handler to member joins.
func (h *Handler) Register(registrar discord.HandlerRegistrar) {
	if !h.config.Enabled {
		h.logger.Info("Handler is disabled, skipping registration", nil)
		return
	}
	registrar.AddHandler(h.OnGuildMemberAdd)
}

func (h *Handler) OnGuildMemberAdd(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e == nil {
		return
	}

	start := time.Now()
	metrics.InteractionsActive.WithLabelValues(TaskType).Inc()
	defer metrics.InteractionsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if _, err := h.Execute(ctx, e.Member); err != nil {
		stdErr := errors.AsStandard(err)
		metrics.InteractionsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		errors.NewErrorHandler(h.logger).HandleInteractionError(ctx, nil, TaskType, stdErr)
		return
	}

	metrics.InteractionsHandled.WithLabelValues(TaskType).Inc()
	metrics.InteractionDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute greets member in the welcome channel. A deleted channel is not an
// error: nothing is posted. Joins to a guild other than the one owning the
// welcome channel are ignored.
func (h *Handler) Execute(_ context.Context, member *discordgo.Member) (*Output, error) {
	if member == nil || member.User == nil {
		return &Output{}, nil
	}

	ch, err := h.platform.Channel(h.config.ChannelID)
	if err != nil {
		if discord.IsNotFound(err) {
			h.logger.Debug("Welcome channel not found, skipping greeting", map[string]interface{}{
				"channelId": h.config.ChannelID,
				"memberId":  member.User.ID,
			})
			return &Output{}, nil
		}
		return nil, discord.ClassifyError(err)
	}
	if ch.GuildID != "" && member.GuildID != "" && ch.GuildID != member.GuildID {
		h.logger.Debug("Member joined another guild, skipping greeting", map[string]interface{}{
			"channelGuildId": ch.GuildID,
			"guildId":        member.GuildID,
			"memberId":       member.User.ID,
		})
		return &Output{}, nil
	}

	msg, err := h.platform.SendMessage(h.config.ChannelID, &discordgo.MessageSend{
		Content: Greeting(member.User.ID),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{member.User.ID},
		},
	})
	if err != nil {
		if discord.IsNotFound(err) {
			h.logger.Debug("Welcome channel not found, skipping greeting", map[string]interface{}{
				"channelId": h.config.ChannelID,
				"memberId":  member.User.ID,
			})
			return &Output{}, nil
		}
		return nil, discord.ClassifyError(err)
	}

	h.logger.Info("Member greeted", map[string]interface{}{
		"guildId":  member.GuildID,
		"memberId": member.User.ID,
	})
	return &Output{Sent: true, MessageID: msg.ID}, nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil {
		cfg.Enabled = appConfig.Welcome.Enabled && config.IsWorkerEnabled(appConfig, TaskType)
		if appConfig.Welcome.ChannelID != "" {
			cfg.ChannelID = appConfig.Welcome.ChannelID
		}
		if workerCfg := config.GetWorkerConfig(appConfig, TaskType); workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
	}
	return cfg
}
