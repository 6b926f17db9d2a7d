package discord

import (
	"testing"

	"role-validation-bot/internal/common/errors"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedDescription(t *testing.T) {
	got, err := EmbedDescription(&discordgo.Message{Embeds: []*discordgo.MessageEmbed{{Description: "Prénom: Ada"}}})
	require.NoError(t, err)
	assert.Equal(t, "Prénom: Ada", got)

	_, err = EmbedDescription(&discordgo.Message{})
	assert.Equal(t, errors.ErrCodeMalformedState, errors.CodeOf(err))

	_, err = EmbedDescription(nil)
	assert.Equal(t, errors.ErrCodeMalformedState, errors.CodeOf(err))
}

func TestTextInputValues(t *testing.T) {
	components := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: "first_name", Value: "Ada"},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{CustomID: "last_name", Value: "Lovelace"},
		}},
	}

	assert.Equal(t, map[string]string{"first_name": "Ada", "last_name": "Lovelace"}, TextInputValues(components))
}

func TestDisableComponents(t *testing.T) {
	components := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{CustomID: "accept_1_2", Label: "Accepter", Style: discordgo.SuccessButton},
			discordgo.Button{CustomID: "deny_1_2", Label: "Refuser", Style: discordgo.DangerButton},
		}},
	}

	got := DisableComponents(components)
	require.Len(t, got, 1)
	row, ok := got[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		require.True(t, ok)
		assert.True(t, b.Disabled, b.CustomID)
	}

	// the source message is untouched
	assert.False(t, components[0].(*discordgo.ActionsRow).Components[0].(*discordgo.Button).Disabled)
}
