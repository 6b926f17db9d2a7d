package discord

import (
	"context"
	"time"

	"role-validation-bot/internal/common/errors"

	"github.com/bwmarrin/discordgo"
)

// HandlerRegistrar registers gateway event handlers; *discordgo.Session
// satisfies it.
type HandlerRegistrar interface {
	AddHandler(handler interface{}) func()
}

// ReplyWaiter suspends a handler until a given member posts in a given channel.
type ReplyWaiter struct {
	registrar HandlerRegistrar
}

func NewReplyWaiter(registrar HandlerRegistrar) *ReplyWaiter {
	return &ReplyWaiter{registrar: registrar}
}

// WaitForReply returns the first message by userID in channelID, or a TIMEOUT
// error once timeout (or ctx) expires. The temporary handler is always removed.
func (w *ReplyWaiter) WaitForReply(ctx context.Context, channelID, userID string, timeout time.Duration) (*discordgo.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	replies := make(chan *discordgo.Message, 1)
	remove := w.registrar.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Message == nil || m.Author == nil {
			return
		}
		if m.Author.ID != userID || m.ChannelID != channelID {
			return
		}
		select {
		case replies <- m.Message:
		default:
		}
	})
	defer remove()

	select {
	case msg := <-replies:
		return msg, nil
	case <-ctx.Done():
		return nil, errors.NewTimeoutError(ctx.Err())
	}
}
