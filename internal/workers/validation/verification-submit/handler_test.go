package verificationsubmit

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"role-validation-bot/internal/common/discord"
	"role-validation-bot/internal/common/discord/discordtest"
	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/common/logger"
	"role-validation-bot/internal/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const selectionDescription = "Rôles uniques: <@&1>, <@&2>\nRôle de validation: <@&3>\nChannel de validation: 555"

func createValidInput() *Input {
	return &Input{
		GuildID:             "900",
		MemberID:            "42",
		ValidationChannelID: "555",
		FirstName:           "Ada",
		LastName:            "Lovelace",
		SelectionText:       selectionDescription,
	}
}

func modalInteraction(customID, first, last string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i1",
		Type:    discordgo.InteractionModalSubmit,
		GuildID: "900",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "42"}},
		Message: &discordgo.Message{
			ID:     "m1",
			Embeds: []*discordgo.MessageEmbed{{Description: selectionDescription}},
		},
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: customID,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: "first_name", Value: first},
				}},
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: "last_name", Value: last},
				}},
			},
		},
	}}
}

func newTestHandler(t *testing.T, platform *discordtest.MockPlatform) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Platform:     platform,
		CustomConfig: &Config{Enabled: true, Timeout: time.Second},
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestHandler_NewHandler(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform is required")

	_, err = NewHandler(HandlerOptions{Platform: &discordtest.MockPlatform{}, CustomConfig: &Config{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout must be positive")
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(modalInteraction("verification_555", "  Ada ", "Lovelace"))
	require.NoError(t, err)
	assert.Equal(t, createValidInput(), input)

	_, err = parseInput(modalInteraction("verification_abc", "Ada", "Lovelace"))
	assert.Equal(t, errors.ErrCodeMalformedState, errors.CodeOf(err))

	ic := modalInteraction("verification_555", "Ada", "Lovelace")
	ic.Message = nil
	_, err = parseInput(ic)
	assert.Equal(t, errors.ErrCodeMalformedState, errors.CodeOf(err))
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		first   string
		last    string
		wantErr bool
	}{
		{name: "valid", first: "Ada", last: "Lovelace"},
		{name: "accented", first: "Éloïse", last: "Dupont-Moreau"},
		{name: "empty first name", first: "", last: "Lovelace", wantErr: true},
		{name: "empty last name", first: "Ada", last: "", wantErr: true},
		{name: "exactly at the limit", first: strings.Repeat("a", 15), last: strings.Repeat("b", 16)},
		{name: "nickname too long", first: strings.Repeat("a", 16), last: strings.Repeat("b", 16), wantErr: true},
		{name: "single field too long", first: strings.Repeat("a", 33), last: "b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createValidInput()
			input.FirstName = tt.first
			input.LastName = tt.last

			err := validateInput(input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeMalformedInput, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestHandler_Execute_PostsDecisionRequest(t *testing.T) {
	platform := &discordtest.MockPlatform{}
	h := newTestHandler(t, platform)

	platform.On("Channel", "555").Return(&discordgo.Channel{ID: "555", GuildID: "900"}, nil)
	platform.On("SendMessage", "555", mock.MatchedBy(func(m *discordgo.MessageSend) bool {
		return m.Embeds[0].Description == "Prénom: Ada\nNom: Lovelace\nUtilisateur: <@42>\nRôles uniques: <@&1>, <@&2>\nRôle de validation: <@&3>"
	})).Return(&discordgo.Message{ID: "r1"}, nil).Once()

	out, err := h.Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.Equal(t, "r1", out.MessageID)
	platform.AssertExpectations(t)
}

func TestHandler_Execute_Failures(t *testing.T) {
	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}

	tests := []struct {
		name        string
		selection   string
		channelErr  error
		sendErr     error
		wantCode    errors.ErrorCode
		wantMessage string
	}{
		{
			name:      "selection prompt edited",
			selection: "Rôles uniques: <@&1>",
			wantCode:  errors.ErrCodeMalformedState,
		},
		{
			name:        "validation channel deleted",
			selection:   selectionDescription,
			channelErr:  notFound,
			wantCode:    errors.ErrCodeNotFound,
			wantMessage: "Le salon de validation n'existe plus. Veuillez contacter un modérateur.",
		},
		{
			name:        "cannot post in validation channel",
			selection:   selectionDescription,
			sendErr:     forbidden,
			wantCode:    errors.ErrCodePermissionDenied,
			wantMessage: "Je n'ai pas la permission d'envoyer la demande dans le salon de validation.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := &discordtest.MockPlatform{}
			h := newTestHandler(t, platform)

			if tt.channelErr != nil {
				platform.On("Channel", "555").Return(nil, tt.channelErr)
			} else {
				platform.On("Channel", "555").Return(&discordgo.Channel{ID: "555"}, nil)
			}
			if tt.sendErr != nil {
				platform.On("SendMessage", "555", mock.Anything).Return(nil, tt.sendErr)
			}

			input := createValidInput()
			input.SelectionText = tt.selection
			_, err := h.Execute(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, errors.AsStandard(err).Message)
			}
		})
	}
}

func TestHandler_Handle_Acknowledges(t *testing.T) {
	platform := &discordtest.MockPlatform{}
	h := newTestHandler(t, platform)
	ic := modalInteraction("verification_555", "Ada", "Lovelace")

	platform.On("Channel", "555").Return(&discordgo.Channel{ID: "555"}, nil)
	platform.On("SendMessage", "555", mock.Anything).Return(&discordgo.Message{ID: "r1"}, nil)
	platform.On("Respond", ic.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data.Content == Acknowledgement && r.Data.Flags == discordgo.MessageFlagsEphemeral
	})).Return(nil).Once()

	require.NoError(t, h.Handle(context.Background(), discord.NewReply(platform, ic.Interaction), ic))
	platform.AssertExpectations(t)
}

func TestHandler_Handle_RejectsBlankNames(t *testing.T) {
	platform := &discordtest.MockPlatform{}
	h := newTestHandler(t, platform)
	ic := modalInteraction("verification_555", "   ", "Lovelace")

	err := h.Handle(context.Background(), discord.NewReply(platform, ic.Interaction), ic)
	assert.Equal(t, errors.ErrCodeMalformedInput, errors.CodeOf(err))
	platform.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestDecisionRequestMessage(t *testing.T) {
	msg := DecisionRequestMessage(models.DecisionRequest{
		FirstName:        "Ada",
		LastName:         "Lovelace",
		MemberID:         "42",
		RoleIDs:          []string{"1", "2"},
		ValidationRoleID: "3",
	}, "555")
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, RequestTitle, msg.Embeds[0].Title)
	assert.Equal(t, RequestColor, msg.Embeds[0].Color)

	row := msg.Components[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 2)
	accept := row.Components[0].(discordgo.Button)
	deny := row.Components[1].(discordgo.Button)
	assert.Equal(t, "accept_42_555", accept.CustomID)
	assert.Equal(t, AcceptLabel, accept.Label)
	assert.Equal(t, discordgo.SuccessButton, accept.Style)
	assert.Equal(t, "deny_42_555", deny.CustomID)
	assert.Equal(t, discordgo.DangerButton, deny.Style)
}
