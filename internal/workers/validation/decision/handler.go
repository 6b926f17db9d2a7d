package decision

import (
	"context"
	"fmt"
	"time"

	"role-validation-bot/internal/common/audit"
	"role-validation-bot/internal/common/codec"
	"role-validation-bot/internal/common/config"
	"role-validation-bot/internal/common/discord"
	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/common/idempotency"
	"role-validation-bot/internal/common/logger"
	"role-validation-bot/internal/common/observability"
	"role-validation-bot/internal/models"

	"github.com/bwmarrin/discordgo"
)

const TaskType = "decision"

type Handler struct {
	config   *Config
	logger   logger.Logger
	platform discord.Platform
	store    idempotency.Store
	recorder audit.Recorder
	obs      *observability.Observability
	service  *Service
	now      func() time.Time
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Platform      discord.Platform
	Store         idempotency.Store
	Recorder      audit.Recorder
	Observability *observability.Observability
	CustomConfig  *Config
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Platform == nil {
		return nil, fmt.Errorf("%s: platform is required", TaskType)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%s: idempotency store is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	recorder := opts.Recorder
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}

	return &Handler{
		config:   cfg,
		logger:   log,
		platform: opts.Platform,
		store:    opts.Store,
		recorder: recorder,
		obs:      opts.Observability,
		service: NewService(ServiceDependencies{
			Platform:      opts.Platform,
			Logger:        log,
			Observability: opts.Observability,
		}),
		now: time.Now,
	}, nil
}

func (h *Handler) Register(router *discord.Router) {
	if !h.config.Enabled {
		h.logger.Info("Handler is disabled, skipping registration", nil)
		return
	}
	router.HandleComponent(codec.IsDecisionID, discord.Route{Name: TaskType, Timeout: h.config.Timeout, Handler: h})
}

func (h *Handler) Handle(ctx context.Context, reply *discord.Reply, ic *discordgo.InteractionCreate) error {
	input, err := parseInput(ic)
	if err != nil {
		return err
	}

	member, err := h.platform.Member(input.GuildID, input.Target.MemberID)
	if err != nil {
		stdErr := discord.ClassifyError(err)
		if stdErr.Code == errors.ErrCodeNotFound {
			return stdErr.WithMessage(fmt.Sprintf("Le membre %s n'est plus sur le serveur.",
				codec.UserMention(input.Target.MemberID)))
		}
		return stdErr
	}

	if err := reply.DeferUpdate(ctx); err != nil {
		return err
	}

	_, err = h.Execute(ctx, input, member)
	return err
}

// Execute applies the decision at most once per decision request.
func (h *Handler) Execute(ctx context.Context, input *Input, member *discordgo.Member) (*Output, error) {
	log := logger.FromContext(ctx, h.logger)
	key := idempotency.DecisionKey(input.GuildID, input.Message.ID)

	claimed, err := h.store.Claim(ctx, key, h.config.IdempotencyTTL)
	if err != nil {
		h.obs.RecordDecision(ctx, OutcomeFailed)
		return nil, errors.NewInternalError(err)
	}
	if !claimed {
		h.obs.RecordDecision(ctx, OutcomeDuplicate)
		return nil, errors.NewAlreadyDecidedError(key)
	}

	var output *Output
	switch input.Target.Action {
	case models.DecisionAccept:
		output, err = h.service.Accept(ctx, input, member)
	default:
		output, err = h.service.Deny(ctx, input)
	}

	if err != nil {
		if output != nil && len(output.GrantedRoles) > 0 {
			// the member already holds granted roles; the request stays claimed
			// so a later deny cannot contradict them
			h.obs.RecordDecision(ctx, OutcomePartial)
			log.Warn("Accept halted after granting roles", map[string]interface{}{
				"key":      key,
				"memberId": output.MemberID,
				"granted":  output.GrantedRoles,
				"error":    err.Error(),
			})
			return nil, err
		}

		h.obs.RecordDecision(ctx, OutcomeFailed)
		// nothing was applied: staff may retry once the cause is fixed
		if rerr := h.store.Release(ctx, key); rerr != nil {
			log.Error("Failed to release decision claim", map[string]interface{}{
				"key":   key,
				"error": rerr.Error(),
			})
		}
		return nil, err
	}

	outcome := OutcomeDenied
	if output.Action == models.DecisionAccept {
		outcome = OutcomeAccepted
	}
	h.obs.RecordDecision(ctx, outcome)

	h.record(ctx, input, output)

	log.Info("Decision applied", map[string]interface{}{
		"action":   output.Action,
		"memberId": output.MemberID,
		"actorId":  input.ActorID,
		"granted":  len(output.GrantedRoles),
		"notified": output.Notified,
	})
	return output, nil
}

func (h *Handler) record(ctx context.Context, input *Input, output *Output) {
	rec := models.DecisionRecord{
		GuildID:   input.GuildID,
		MessageID: input.Message.ID,
		MemberID:  output.MemberID,
		ActorID:   input.ActorID,
		Action:    output.Action,
		Nickname:  output.Nickname,
		DecidedAt: h.now().UTC(),
	}
	if len(output.GrantedRoles) > 0 {
		rec.ValidationRoleID = output.GrantedRoles[0]
		rec.RoleIDs = output.GrantedRoles[1:]
	}

	if err := h.recorder.Record(ctx, rec); err != nil {
		logger.FromContext(ctx, h.logger).Warn("Failed to write decision audit", map[string]interface{}{
			"messageId": input.Message.ID,
			"error":     err.Error(),
		})
	}
}

func parseInput(ic *discordgo.InteractionCreate) (*Input, error) {
	target, err := codec.ParseDecisionID(ic.MessageComponentData().CustomID)
	if err != nil {
		return nil, err
	}
	if ic.Message == nil {
		return nil, errors.NewMalformedStateError("decision button without message")
	}
	if ic.GuildID == "" {
		return nil, errors.NewMalformedInputError("Cette action doit être effectuée sur un serveur.", "no guild")
	}

	return &Input{
		GuildID: ic.GuildID,
		ActorID: discord.InteractionUserID(ic.Interaction),
		Target:  *target,
		Message: ic.Message,
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
		if appConfig.Idempotency.TTL > 0 {
			cfg.IdempotencyTTL = config.GetDuration(appConfig.Idempotency.TTL)
		}
	}
	return cfg
}
