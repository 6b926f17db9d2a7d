// Package discordtest provides test doubles for the discord package.
package discordtest

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a testify mock of discord.Platform.
type MockPlatform struct {
	mock.Mock
	BotID string
}

func (m *MockPlatform) Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	args := m.Called(i, resp)
	return args.Error(0)
}

func (m *MockPlatform) Followup(i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	args := m.Called(i, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *MockPlatform) SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	args := m.Called(channelID, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *MockPlatform) EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	args := m.Called(edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *MockPlatform) Channel(channelID string) (*discordgo.Channel, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Channel), args.Error(1)
}

func (m *MockPlatform) Guild(guildID string) (*discordgo.Guild, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Guild), args.Error(1)
}

func (m *MockPlatform) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.Role), args.Error(1)
}

func (m *MockPlatform) Member(guildID, userID string) (*discordgo.Member, error) {
	args := m.Called(guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Member), args.Error(1)
}

func (m *MockPlatform) AddRole(guildID, userID, roleID string) error {
	args := m.Called(guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockPlatform) SetNickname(guildID, userID, nickname string) error {
	args := m.Called(guildID, userID, nickname)
	return args.Error(0)
}

func (m *MockPlatform) DirectMessage(userID, content string) error {
	args := m.Called(userID, content)
	return args.Error(0)
}

func (m *MockPlatform) BotUserID() string {
	return m.BotID
}

// Registrar records gateway handlers so tests can fire events by hand.
type Registrar struct {
	mu       sync.Mutex
	handlers map[int]func(*discordgo.Session, *discordgo.MessageCreate)
	next     int
	added    chan struct{}
}

func NewRegistrar() *Registrar {
	return &Registrar{
		handlers: make(map[int]func(*discordgo.Session, *discordgo.MessageCreate)),
		added:    make(chan struct{}, 16),
	}
}

// AddHandler accepts MessageCreate handlers only.
func (r *Registrar) AddHandler(handler interface{}) func() {
	h, ok := handler.(func(*discordgo.Session, *discordgo.MessageCreate))
	if !ok {
		return func() {}
	}
	r.mu.Lock()
	id := r.next
	r.next++
	r.handlers[id] = h
	r.mu.Unlock()

	select {
	case r.added <- struct{}{}:
	default:
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.handlers, id)
	}
}

// Added blocks until a handler has been registered.
func (r *Registrar) Added() <-chan struct{} {
	return r.added
}

// Emit delivers a message to every registered handler.
func (r *Registrar) Emit(msg *discordgo.Message) {
	r.mu.Lock()
	handlers := make([]func(*discordgo.Session, *discordgo.MessageCreate), 0, len(r.handlers))
	for _, h := range r.handlers {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(nil, &discordgo.MessageCreate{Message: msg})
	}
}

// Len returns the number of live handlers.
func (r *Registrar) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
