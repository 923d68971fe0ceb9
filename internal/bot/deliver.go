package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/eliseohh/edupagebot/internal/journal"
)

// Method is how a response reaches the chat.
type Method string

const (
	MethodEdit  Method = "edit"
	MethodReply Method = "reply"
	MethodSend  Method = "send"
	MethodNone  Method = "none"
)

// deliveryMethod applies the delivery precedence: edit the message carrying
// the pressed button, else reply to the typed message, else send to the chat.
func deliveryMethod(c tele.Context) Method {
	switch {
	case c.Callback() != nil:
		return MethodEdit
	case c.Message() != nil:
		return MethodReply
	case c.Chat() != nil:
		return MethodSend
	}
	return MethodNone
}

func (b *Bot) deliver(c tele.Context, r Response) error {
	method := deliveryMethod(c)
	markup := r.Keyboard.Markup()

	var err error
	switch method {
	case MethodEdit:
		err = c.Edit(r.Text, markup)
		if errors.Is(err, tele.ErrSameMessageContent) {
			err = nil
		}
	case MethodReply:
		err = c.Reply(r.Text, markup)
	case MethodSend:
		err = c.Send(r.Text, markup)
	default:
		b.log.Warn("update has no callback, message or chat; dropping response",
			zap.String("screen", r.Screen))
		b.record(c, r, method)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, r.Screen, err)
	}

	b.log.Debug("delivered",
		zap.String("screen", r.Screen),
		zap.String("method", string(method)),
		zap.Int64("chat", chatID(c)))
	b.record(c, r, method)
	return nil
}

func (b *Bot) record(c tele.Context, r Response, method Method) {
	if b.journal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := b.journal.Record(ctx, journal.Entry{
		ChatID:      chatID(c),
		Screen:      r.Screen,
		Method:      string(method),
		DeliveredAt: time.Now(),
	})
	if err != nil {
		b.log.Error("journal write failed", zap.Error(err), zap.String("screen", r.Screen))
	}
}
