// internal/common/discord/router.go
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/common/logger"
	"role-validation-bot/internal/common/metrics"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// InteractionHandler processes one routed interaction. Returned errors are
// logged and reported to the member by the router.
type InteractionHandler interface {
	Handle(ctx context.Context, reply *Reply, ic *discordgo.InteractionCreate) error
}

// HandlerFunc adapts a function to InteractionHandler.
type HandlerFunc func(ctx context.Context, reply *Reply, ic *discordgo.InteractionCreate) error

func (f HandlerFunc) Handle(ctx context.Context, reply *Reply, ic *discordgo.InteractionCreate) error {
	return f(ctx, reply, ic)
}

// Route binds a handler to a name used for logs and metrics.
type Route struct {
	Name    string
	Timeout time.Duration
	Handler InteractionHandler
}

type matchedRoute struct {
	match func(customID string) bool
	route Route
}

// Router dispatches gateway interactions to handlers by command name or
// custom id.
type Router struct {
	platform Platform
	logger   logger.Logger
	timeout  time.Duration

	commands   map[string]Route
	components []matchedRoute
	modals     []matchedRoute
}

func NewRouter(platform Platform, log logger.Logger, defaultTimeout time.Duration) *Router {
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Second
	}
	return &Router{
		platform: platform,
		logger:   log,
		timeout:  defaultTimeout,
		commands: make(map[string]Route),
	}
}

func (r *Router) HandleCommand(name string, route Route) {
	r.commands[name] = route
}

func (r *Router) HandleComponent(match func(customID string) bool, route Route) {
	r.components = append(r.components, matchedRoute{match: match, route: route})
}

func (r *Router) HandleModal(match func(customID string) bool, route Route) {
	r.modals = append(r.modals, matchedRoute{match: match, route: route})
}

// Exact matches one custom id.
func Exact(id string) func(string) bool {
	return func(customID string) bool { return customID == id }
}

// Prefix matches custom ids starting with prefix.
func Prefix(prefix string) func(string) bool {
	return func(customID string) bool { return strings.HasPrefix(customID, prefix) }
}

// OnInteraction is the gateway event callback.
func (r *Router) OnInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	r.Dispatch(context.Background(), ic)
}

// Dispatch runs the handler routed for ic. It returns false when nothing matched.
func (r *Router) Dispatch(ctx context.Context, ic *discordgo.InteractionCreate) bool {
	if ic == nil || ic.Interaction == nil {
		return false
	}

	route, key, ok := r.lookup(ic)
	if !ok {
		r.logger.Debug("No handler for interaction", map[string]interface{}{
			"type": int(ic.Type),
			"key":  key,
		})
		return false
	}

	r.run(ctx, route, ic)
	return true
}

func (r *Router) lookup(ic *discordgo.InteractionCreate) (Route, string, bool) {
	switch ic.Type {
	case discordgo.InteractionApplicationCommand:
		name := ic.ApplicationCommandData().Name
		route, ok := r.commands[name]
		return route, name, ok
	case discordgo.InteractionMessageComponent:
		id := ic.MessageComponentData().CustomID
		return find(r.components, id)
	case discordgo.InteractionModalSubmit:
		id := ic.ModalSubmitData().CustomID
		return find(r.modals, id)
	}
	return Route{}, "", false
}

func find(routes []matchedRoute, customID string) (Route, string, bool) {
	for _, m := range routes {
		if m.match(customID) {
			return m.route, customID, true
		}
	}
	return Route{}, customID, false
}

func (r *Router) run(ctx context.Context, route Route, ic *discordgo.InteractionCreate) {
	start := time.Now()
	metrics.InteractionsActive.WithLabelValues(route.Name).Inc()
	defer metrics.InteractionsActive.WithLabelValues(route.Name).Dec()

	timeout := route.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := r.logger.WithFields(map[string]interface{}{
		"requestId": uuid.NewString(),
		"handler":   route.Name,
		"guildId":   ic.GuildID,
		"userId":    InteractionUserID(ic.Interaction),
	})
	ctx = logger.NewContext(ctx, log)

	reply := NewReply(r.platform, ic.Interaction)
	err := r.safeHandle(ctx, route, reply, ic)

	metrics.InteractionDuration.WithLabelValues(route.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		stdErr := errors.NewErrorHandler(log).HandleInteractionError(ctx, reply, route.Name, err)
		metrics.InteractionsFailed.WithLabelValues(route.Name, string(stdErr.Code)).Inc()
		return
	}

	metrics.InteractionsHandled.WithLabelValues(route.Name).Inc()
	log.Info("Interaction handled", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
	})
}

func (r *Router) safeHandle(ctx context.Context, route Route, reply *Reply, ic *discordgo.InteractionCreate) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.NewInternalError(fmt.Errorf("panic in %s: %v", route.Name, p))
		}
	}()
	return route.Handler.Handle(ctx, reply, ic)
}

// InteractionUserID returns the id of the user who triggered i.
func InteractionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
