package e2e

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeGuild is an in-memory single-guild platform. It keeps posted messages
// so later interactions can be built from what the bot actually sent.
type fakeGuild struct {
	mu sync.Mutex

	guild    *discordgo.Guild
	roles    []*discordgo.Role
	members  map[string]*discordgo.Member
	channels map[string]*discordgo.Channel
	botID    string

	nextID    int
	messages  map[string]*discordgo.Message
	responses []*discordgo.InteractionResponse
	followups []string
	dms       map[string][]string
	refuseDMs map[string]bool
}

func newFakeGuild(guildID, ownerID, botID string) *fakeGuild {
	return &fakeGuild{
		guild:     &discordgo.Guild{ID: guildID, OwnerID: ownerID},
		members:   make(map[string]*discordgo.Member),
		channels:  make(map[string]*discordgo.Channel),
		botID:     botID,
		nextID:    900000000000000000,
		messages:  make(map[string]*discordgo.Message),
		dms:       make(map[string][]string),
		refuseDMs: make(map[string]bool),
	}
}

func notFound() error {
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"},
		ResponseBody: []byte(`{"message":"Unknown"}`),
	}
}

func forbidden() error {
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: http.StatusForbidden, Status: "403 Forbidden"},
		ResponseBody: []byte(`{"message":"Cannot send messages to this user"}`),
	}
}

func (f *fakeGuild) addRole(id, name string, position int) {
	f.roles = append(f.roles, &discordgo.Role{ID: id, Name: name, Position: position})
}

func (f *fakeGuild) addMember(id string, roles ...string) {
	f.members[id] = &discordgo.Member{GuildID: f.guild.ID, User: &discordgo.User{ID: id}, Roles: roles}
}

func (f *fakeGuild) addChannel(id string) {
	f.channels[id] = &discordgo.Channel{ID: id, GuildID: f.guild.ID}
}

func (f *fakeGuild) member(id string) *discordgo.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := *f.members[id]
	m.Roles = append([]string{}, m.Roles...)
	return &m
}

func (f *fakeGuild) message(id string) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[id]
}

// lastMessageIn returns the most recent message the bot posted in channelID.
func (f *fakeGuild) lastMessageIn(channelID string) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *discordgo.Message
	for _, m := range f.messages {
		if m.ChannelID == channelID && (last == nil || m.ID > last.ID) {
			last = m
		}
	}
	return last
}

func (f *fakeGuild) lastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

// responseTexts returns the content of every initial interaction response.
func (f *fakeGuild) responseTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	texts := make([]string, 0, len(f.responses))
	for _, r := range f.responses {
		if r.Data != nil {
			texts = append(texts, r.Data.Content)
		}
	}
	return texts
}

func (f *fakeGuild) followupTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.followups...)
}

func (f *fakeGuild) Respond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeGuild) Followup(_ *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, params.Content)
	return &discordgo.Message{Content: params.Content}, nil
}

func (f *fakeGuild) SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, notFound()
	}
	f.nextID++
	posted := &discordgo.Message{
		ID:         fmt.Sprint(f.nextID),
		ChannelID:  channelID,
		GuildID:    f.guild.ID,
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: msg.Components,
		Author:     &discordgo.User{ID: f.botID, Bot: true},
	}
	f.messages[posted.ID] = posted
	return posted, nil
}

func (f *fakeGuild) EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orig, ok := f.messages[edit.ID]
	if !ok || orig.ChannelID != edit.Channel {
		return nil, notFound()
	}
	updated := *orig
	if edit.Embeds != nil {
		updated.Embeds = *edit.Embeds
	}
	if edit.Components != nil {
		updated.Components = *edit.Components
	}
	f.messages[edit.ID] = &updated
	return &updated, nil
}

func (f *fakeGuild) Channel(channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, notFound()
	}
	return ch, nil
}

func (f *fakeGuild) Guild(guildID string) (*discordgo.Guild, error) {
	if guildID != f.guild.ID {
		return nil, notFound()
	}
	return f.guild, nil
}

func (f *fakeGuild) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	if guildID != f.guild.ID {
		return nil, notFound()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.Role{}, f.roles...), nil
}

func (f *fakeGuild) Member(guildID, userID string) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok || guildID != f.guild.ID {
		return nil, notFound()
	}
	cp := *m
	cp.Roles = append([]string{}, m.Roles...)
	return &cp, nil
}

func (f *fakeGuild) AddRole(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok || guildID != f.guild.ID {
		return notFound()
	}
	for _, r := range m.Roles {
		if r == roleID {
			return nil
		}
	}
	m.Roles = append(m.Roles, roleID)
	return nil
}

func (f *fakeGuild) SetNickname(guildID, userID, nickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok || guildID != f.guild.ID {
		return notFound()
	}
	m.Nick = nickname
	return nil
}

func (f *fakeGuild) DirectMessage(userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refuseDMs[userID] {
		return forbidden()
	}
	f.dms[userID] = append(f.dms[userID], content)
	return nil
}

func (f *fakeGuild) BotUserID() string {
	return f.botID
}
