package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Event is an inbound update reduced to what routing needs: either a slash
// command or a button press.
type Event interface {
	event()
}

type NamedCommand struct {
	Command Command
}

// ButtonPress carries the raw callback data, which may be anything the client
// sent.
type ButtonPress struct {
	Tag string
}

func (NamedCommand) event() {}
func (ButtonPress) event()  {}

// Route picks the handler for ev. It reports false when ev is not in the
// dispatch tables, in which case the returned handler renders the unknown
// action screen.
func (b *Bot) Route(ev Event) (tele.HandlerFunc, bool) {
	switch ev := ev.(type) {
	case NamedCommand:
		switch ev.Command {
		case CommandStart:
			return b.showMenu, true
		case CommandHelp:
			return b.showHelp, true
		}
		if s, ok := ev.Command.Screen(); ok {
			return b.showData(s), true
		}
	case ButtonPress:
		if s, ok := ParseTag(ev.Tag); ok {
			if s == ScreenMenu {
				return b.showMenu, true
			}
			return b.showData(s), true
		}
	}
	return b.unknownAction, false
}

func (b *Bot) onCallback(c tele.Context) error {
	var tag string
	if cb := c.Callback(); cb != nil {
		tag = cb.Data
		if err := c.Respond(); err != nil {
			b.log.Debug("callback answer failed", zap.Error(err))
		}
	}

	h, ok := b.Route(ButtonPress{Tag: tag})
	if !ok {
		b.log.Info("unknown callback tag", zap.String("tag", tag), zap.Int64("chat", chatID(c)))
	}
	return h(c)
}

func (b *Bot) showMenu(c tele.Context) error {
	return b.deliver(c, welcomeResponse())
}

func (b *Bot) showHelp(c tele.Context) error {
	return b.deliver(c, helpResponse())
}

func (b *Bot) unknownAction(c tele.Context) error {
	return b.deliver(c, unknownResponse())
}

// showData delivers the acknowledgment before the portal query starts.
func (b *Bot) showData(s Screen) tele.HandlerFunc {
	return func(c tele.Context) error {
		if deliveryMethod(c) == MethodNone {
			return b.deliver(c, ackResponse(s))
		}
		if err := b.deliver(c, ackResponse(s)); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), b.fetchTimeout())
		defer cancel()

		text, err := b.fetch(ctx, s)
		if err != nil {
			b.log.Error("portal query failed",
				zap.Stringer("screen", s),
				zap.Int64("chat", chatID(c)),
				zap.Error(err))
			return b.deliver(c, unavailableResponse(s))
		}
		if text == "" {
			text = NoDataText
		}
		return b.deliver(c, contentResponse(s, text))
	}
}

func (b *Bot) fetch(ctx context.Context, s Screen) (string, error) {
	switch s {
	case ScreenNextLesson:
		return b.session.NextLesson(ctx)
	case ScreenSchedule:
		return b.session.WeeklySchedule(ctx)
	case ScreenLastLessons:
		return b.session.LastLessons(ctx)
	case ScreenExams:
		return b.session.UpcomingExams(ctx)
	}
	return "", fmt.Errorf("screen %s has no portal query", s)
}
