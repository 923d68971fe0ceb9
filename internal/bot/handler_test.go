package bot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliseohh/edupagebot/internal/portal"
)

func run(t *testing.T, tb *testBot, ev Event, ctx *MockContext) []delivery {
	t.Helper()
	h, ok := tb.Route(ev)
	require.True(t, ok)
	require.NoError(t, h(ctx))
	return ctx.deliveries()
}

func TestNextLessonCommand(t *testing.T) {
	tb := newTestBot(t)
	ctx := commandContext(11, "/nextlesson")
	tb.session.onFetch = func(context.Context) error {
		assert.Len(t, ctx.deliveries(), 1, "acknowledgment must precede the portal query")
		return nil
	}

	sent := run(t, tb, NamedCommand{Command: CommandNextLesson}, ctx)

	require.Len(t, sent, 2)
	assert.Equal(t, delivery{Method: MethodReply, Text: "Fetching next lesson...", Markup: MainMenu().Markup()}, sent[0])
	assert.Equal(t, delivery{Method: MethodReply, Text: "Next lesson at 2026.03.09 09:50\nRoom A1\nMath", Markup: BackMenu().Markup()}, sent[1])
	assert.Equal(t, []Screen{ScreenNextLesson}, tb.session.calls)
}

func TestNextLessonCommandDayOver(t *testing.T) {
	tb := newTestBot(t)
	tb.session.texts[ScreenNextLesson] = portal.NoMoreLessons

	sent := run(t, tb, NamedCommand{Command: CommandNextLesson}, commandContext(11, "/nextlesson"))

	require.Len(t, sent, 2)
	assert.Equal(t, "No more lessons today", sent[1].Text)
}

func TestCommandsWithPlaceholderSession(t *testing.T) {
	tb := newTestBot(t)
	tb.Bot.session = portal.NewClient(portal.Credentials{})

	for _, c := range []Command{CommandNextLesson, CommandSchedule, CommandLastLessons, CommandExams} {
		t.Run(c.Name(), func(t *testing.T) {
			sent := run(t, tb, NamedCommand{Command: c}, commandContext(1, c.Endpoint()))
			require.Len(t, sent, 2)
			assert.Equal(t, portal.Placeholder, sent[1].Text)
			assert.Equal(t, BackMenu().Markup(), sent[1].Markup)
		})
	}
}

func TestMenuButton(t *testing.T) {
	tb := newTestBot(t)
	ctx := buttonContext(5, "menu")

	sent := run(t, tb, ButtonPress{Tag: "menu"}, ctx)

	require.Len(t, sent, 1)
	assert.Equal(t, delivery{Method: MethodEdit, Text: WelcomeText, Markup: MainMenu().Markup()}, sent[0])
	assert.Zero(t, tb.session.callCount())
}

func TestStartAndHelpCommands(t *testing.T) {
	tb := newTestBot(t)

	sent := run(t, tb, NamedCommand{Command: CommandStart}, commandContext(1, "/start"))
	require.Len(t, sent, 1)
	assert.Equal(t, delivery{Method: MethodReply, Text: WelcomeText, Markup: MainMenu().Markup()}, sent[0])

	sent = run(t, tb, NamedCommand{Command: CommandHelp}, commandContext(1, "/help"))
	require.Len(t, sent, 1)
	assert.Equal(t, "Available commands: /nextlesson, /schedule, /lastlessons, /exams", sent[0].Text)
	assert.Equal(t, MainMenu().Markup(), sent[0].Markup)

	assert.Zero(t, tb.session.callCount())
}

func TestDataButtons(t *testing.T) {
	for _, s := range []Screen{ScreenNextLesson, ScreenSchedule, ScreenLastLessons, ScreenExams} {
		t.Run(s.Tag(), func(t *testing.T) {
			tb := newTestBot(t)
			ctx := buttonContext(2, s.Tag())

			sent := run(t, tb, ButtonPress{Tag: s.Tag()}, ctx)

			require.Len(t, sent, 2)
			assert.Equal(t, delivery{Method: MethodEdit, Text: ackText(s), Markup: MainMenu().Markup()}, sent[0])
			assert.Equal(t, delivery{Method: MethodEdit, Text: tb.session.texts[s], Markup: BackMenu().Markup()}, sent[1])
			assert.Equal(t, []Screen{s}, tb.session.calls)
		})
	}
}

func TestSessionFailure(t *testing.T) {
	tb := newTestBot(t)
	tb.session.err = errBoom

	sent := run(t, tb, ButtonPress{Tag: "exams"}, buttonContext(2, "exams"))

	require.Len(t, sent, 2)
	assert.Equal(t, delivery{Method: MethodEdit, Text: UnavailableText, Markup: BackMenu().Markup()}, sent[1])

	errs := tb.logs.FilterMessage("portal query failed").All()
	require.Len(t, errs, 1)
	assert.Equal(t, zap.ErrorLevel, errs[0].Level)
	assert.Equal(t, "exams", errs[0].ContextMap()["screen"])
}

func TestSessionTimeout(t *testing.T) {
	tb := newTestBot(t)
	tb.Bot.cfg.FetchTimeout = 10 * time.Millisecond
	tb.session.onFetch = func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	}

	start := time.Now()
	sent := run(t, tb, NamedCommand{Command: CommandSchedule}, commandContext(1, "/schedule"))

	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, sent, 2)
	assert.Equal(t, UnavailableText, sent[1].Text)
}

func TestEmptySessionText(t *testing.T) {
	tb := newTestBot(t)
	tb.session.texts[ScreenLastLessons] = ""

	sent := run(t, tb, NamedCommand{Command: CommandLastLessons}, commandContext(1, "/lastlessons"))

	require.Len(t, sent, 2)
	assert.Equal(t, NoDataText, sent[1].Text)
}

func TestAckFailureSkipsQuery(t *testing.T) {
	tb := newTestBot(t)
	ctx := commandContext(1, "/exams")
	ctx.Err = errBoom

	h, ok := tb.Route(NamedCommand{Command: CommandExams})
	require.True(t, ok)
	require.ErrorIs(t, h(ctx), errBoom)
	assert.Zero(t, tb.session.callCount())
}

func TestDataScreenWithoutDestination(t *testing.T) {
	tb := newTestBot(t)
	ctx := &MockContext{}

	h, ok := tb.Route(NamedCommand{Command: CommandNextLesson})
	require.True(t, ok)
	require.NoError(t, h(ctx))

	assert.Empty(t, ctx.deliveries())
	assert.Equal(t, 1, tb.warnings())
	assert.Zero(t, tb.session.callCount())
}

func TestJournalFollowsConversation(t *testing.T) {
	tb := newTestBot(t)

	run(t, tb, NamedCommand{Command: CommandStart}, commandContext(8, "/start"))
	run(t, tb, ButtonPress{Tag: "schedule"}, buttonContext(8, "schedule"))
	run(t, tb, ButtonPress{Tag: "menu"}, buttonContext(8, "menu"))

	var got []string
	for _, e := range tb.journal.entries {
		assert.Equal(t, int64(8), e.ChatID)
		got = append(got, e.Method+" "+e.Screen)
	}
	assert.Equal(t, []string{
		"reply menu",
		"edit schedule:ack",
		"edit schedule",
		"edit menu",
	}, got)
}

func TestConcurrentConversations(t *testing.T) {
	tb := newTestBot(t)
	const chats = 32

	contexts := make([]*MockContext, chats)
	var wg sync.WaitGroup
	for i := range contexts {
		if i%2 == 0 {
			contexts[i] = commandContext(int64(i), "/exams")
		} else {
			contexts[i] = buttonContext(int64(i), "exams")
		}

		wg.Add(1)
		go func(ctx *MockContext) {
			defer wg.Done()
			h, _ := tb.Route(NamedCommand{Command: CommandExams})
			assert.NoError(t, h(ctx))
		}(contexts[i])
	}
	wg.Wait()

	for i, ctx := range contexts {
		sent := ctx.deliveries()
		require.Len(t, sent, 2, fmt.Sprintf("chat %d", i))
		assert.Equal(t, "Fetching upcoming exams...", sent[0].Text)
		assert.Equal(t, "Math test on Friday", sent[1].Text)
	}
	assert.Equal(t, chats, tb.session.callCount())
	assert.Len(t, tb.journal.entries, 2*chats)
}
