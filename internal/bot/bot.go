package bot

import (
	"context"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/eliseohh/edupagebot/internal/journal"
	"github.com/eliseohh/edupagebot/internal/portal"
)

const defaultFetchTimeout = 15 * time.Second

// Journal stores a record of every delivery.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

type Bot struct {
	api     *tele.Bot
	session portal.Session
	journal Journal
	log     *zap.Logger
	cfg     Config
}

type Config struct {
	Token        string
	PollTimeout  time.Duration
	FetchTimeout time.Duration
}

// New connects to Telegram and registers all handlers. journal may be nil.
func New(cfg Config, session portal.Session, j Journal, log *zap.Logger) (*Bot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 10 * time.Second
	}

	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c tele.Context) {
			log.Error("handler failed", zap.Error(err), zap.Int64("chat", chatID(c)))
		},
	}

	api, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	b := &Bot{api: api, session: session, journal: j, log: log, cfg: cfg}
	b.register()
	return b, nil
}

// Start publishes the command list and blocks until Stop is called.
func (b *Bot) Start() {
	commands := make([]tele.Command, 0, len(Commands))
	for _, c := range Commands {
		commands = append(commands, tele.Command{Text: c.Name(), Description: c.Description()})
	}
	if err := b.api.SetCommands(commands); err != nil {
		b.log.Warn("set commands failed", zap.Error(err))
	}

	b.log.Info("bot started", zap.String("username", b.api.Me.Username))
	b.api.Start()
}

func (b *Bot) Stop() {
	b.api.Stop()
	b.log.Info("bot stopped")
}

func (b *Bot) register() {
	for _, cmd := range Commands {
		h, _ := b.Route(NamedCommand{Command: cmd})
		b.api.Handle(cmd.Endpoint(), h)
	}
	b.api.Handle(tele.OnCallback, b.onCallback)
}

func (b *Bot) fetchTimeout() time.Duration {
	if b.cfg.FetchTimeout > 0 {
		return b.cfg.FetchTimeout
	}
	return defaultFetchTimeout
}

func chatID(c tele.Context) int64 {
	if c == nil {
		return 0
	}
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}
