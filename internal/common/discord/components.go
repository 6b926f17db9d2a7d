package discord

import (
	"role-validation-bot/internal/common/errors"

	"github.com/bwmarrin/discordgo"
)

// EmbedDescription returns the description of the first embed of msg.
func EmbedDescription(msg *discordgo.Message) (string, error) {
	if msg == nil || len(msg.Embeds) == 0 || msg.Embeds[0] == nil {
		return "", errors.NewMalformedStateError("message carries no embed")
	}
	return msg.Embeds[0].Description, nil
}

// TextInputValues collects the values of the text inputs of a submitted form,
// keyed by custom id.
func TextInputValues(components []discordgo.MessageComponent) map[string]string {
	values := make(map[string]string)
	for _, c := range components {
		for _, child := range rowChildren(c) {
			switch in := child.(type) {
			case *discordgo.TextInput:
				values[in.CustomID] = in.Value
			case discordgo.TextInput:
				values[in.CustomID] = in.Value
			}
		}
	}
	return values
}

// DisableComponents returns a copy of components with every button and
// select menu disabled.
func DisableComponents(components []discordgo.MessageComponent) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(components))
	for _, c := range components {
		children := rowChildren(c)
		if children == nil {
			out = append(out, c)
			continue
		}

		disabled := make([]discordgo.MessageComponent, 0, len(children))
		for _, child := range children {
			disabled = append(disabled, disable(child))
		}
		out = append(out, discordgo.ActionsRow{Components: disabled})
	}
	return out
}

func rowChildren(c discordgo.MessageComponent) []discordgo.MessageComponent {
	switch row := c.(type) {
	case *discordgo.ActionsRow:
		return row.Components
	case discordgo.ActionsRow:
		return row.Components
	}
	return nil
}

func disable(c discordgo.MessageComponent) discordgo.MessageComponent {
	switch v := c.(type) {
	case *discordgo.Button:
		b := *v
		b.Disabled = true
		return b
	case discordgo.Button:
		v.Disabled = true
		return v
	case *discordgo.SelectMenu:
		s := *v
		s.Disabled = true
		return s
	case discordgo.SelectMenu:
		v.Disabled = true
		return v
	}
	return c
}
