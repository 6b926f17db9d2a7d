// internal/common/discord/platform.go
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Platform is the subset of the chat platform the handlers use.
type Platform interface {
	Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	Followup(i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error)
	SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error)
	Channel(channelID string) (*discordgo.Channel, error)
	Guild(guildID string) (*discordgo.Guild, error)
	GuildRoles(guildID string) ([]*discordgo.Role, error)
	Member(guildID, userID string) (*discordgo.Member, error)
	AddRole(guildID, userID, roleID string) error
	SetNickname(guildID, userID, nickname string) error
	DirectMessage(userID, content string) error
	BotUserID() string
}

// Session adapts a gateway session to Platform. Lookups hit the state cache
// before the REST API.
type Session struct {
	s *discordgo.Session
}

func NewSession(s *discordgo.Session) *Session {
	return &Session{s: s}
}

func (a *Session) Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return a.s.InteractionRespond(i, resp)
}

func (a *Session) Followup(i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	return a.s.FollowupMessageCreate(i, true, params)
}

func (a *Session) SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return a.s.ChannelMessageSendComplex(channelID, msg)
}

func (a *Session) EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	return a.s.ChannelMessageEditComplex(edit)
}

func (a *Session) Channel(channelID string) (*discordgo.Channel, error) {
	if a.s.State != nil {
		if ch, err := a.s.State.Channel(channelID); err == nil {
			return ch, nil
		}
	}
	return a.s.Channel(channelID)
}

func (a *Session) Guild(guildID string) (*discordgo.Guild, error) {
	if a.s.State != nil {
		if g, err := a.s.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return a.s.Guild(guildID)
}

func (a *Session) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	if a.s.State != nil {
		if g, err := a.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g.Roles, nil
		}
	}
	return a.s.GuildRoles(guildID)
}

func (a *Session) Member(guildID, userID string) (*discordgo.Member, error) {
	if a.s.State != nil {
		if m, err := a.s.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	return a.s.GuildMember(guildID, userID)
}

func (a *Session) AddRole(guildID, userID, roleID string) error {
	return a.s.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (a *Session) SetNickname(guildID, userID, nickname string) error {
	return a.s.GuildMemberNickname(guildID, userID, nickname)
}

func (a *Session) DirectMessage(userID, content string) error {
	ch, err := a.s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	if _, err := a.s.ChannelMessageSend(ch.ID, content); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

func (a *Session) BotUserID() string {
	if a.s.State == nil || a.s.State.User == nil {
		return ""
	}
	return a.s.State.User.ID
}
