package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Reply answers one interaction. The platform accepts exactly one initial
// response; everything after it must be a follow-up.
type Reply struct {
	platform    Platform
	interaction *discordgo.Interaction
	acked       bool
}

func NewReply(platform Platform, i *discordgo.Interaction) *Reply {
	return &Reply{platform: platform, interaction: i}
}

func (r *Reply) Acknowledged() bool {
	return r.acked
}

// Respond sends the initial response.
func (r *Reply) Respond(_ context.Context, resp *discordgo.InteractionResponse) error {
	if err := r.platform.Respond(r.interaction, resp); err != nil {
		return ClassifyError(err)
	}
	r.acked = true
	return nil
}

// DeferUpdate acknowledges a component interaction without changing its message.
func (r *Reply) DeferUpdate(ctx context.Context) error {
	return r.Respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// Modal opens a form in response to the interaction.
func (r *Reply) Modal(ctx context.Context, data *discordgo.InteractionResponseData) error {
	return r.Respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: data,
	})
}

// Ephemeral shows content to the interacting member only.
func (r *Reply) Ephemeral(ctx context.Context, content string) error {
	if !r.acked {
		return r.Respond(ctx, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
	}

	if _, err := r.platform.Followup(r.interaction, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		return ClassifyError(err)
	}
	return nil
}
