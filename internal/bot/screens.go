package bot

import (
	"strings"

	tele "gopkg.in/telebot.v3"
)

// Screen is one of the views a conversation can be on.
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenNextLesson
	ScreenSchedule
	ScreenLastLessons
	ScreenExams
)

// Screens lists every screen in button-table order.
var Screens = []Screen{ScreenMenu, ScreenNextLesson, ScreenSchedule, ScreenLastLessons, ScreenExams}

// Tag is the callback data carried by buttons that open s.
func (s Screen) Tag() string {
	switch s {
	case ScreenMenu:
		return "menu"
	case ScreenNextLesson:
		return "nextlesson"
	case ScreenSchedule:
		return "schedule"
	case ScreenLastLessons:
		return "lastlessons"
	case ScreenExams:
		return "exams"
	}
	return ""
}

func (s Screen) String() string {
	if tag := s.Tag(); tag != "" {
		return tag
	}
	return "unknown"
}

// ParseTag is the inverse of Tag.
func ParseTag(tag string) (Screen, bool) {
	for _, s := range Screens {
		if s.Tag() == tag {
			return s, true
		}
	}
	return 0, false
}

// Command is a slash command the bot registers.
type Command int

const (
	CommandStart Command = iota
	CommandHelp
	CommandNextLesson
	CommandSchedule
	CommandLastLessons
	CommandExams
)

var Commands = []Command{CommandStart, CommandHelp, CommandNextLesson, CommandSchedule, CommandLastLessons, CommandExams}

func (c Command) Name() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandHelp:
		return "help"
	case CommandNextLesson:
		return "nextlesson"
	case CommandSchedule:
		return "schedule"
	case CommandLastLessons:
		return "lastlessons"
	case CommandExams:
		return "exams"
	}
	return ""
}

func (c Command) Endpoint() string { return "/" + c.Name() }

// Description is shown in the client's command menu.
func (c Command) Description() string {
	switch c {
	case CommandStart:
		return "Open the main menu"
	case CommandHelp:
		return "List available commands"
	case CommandNextLesson:
		return "Show the next lesson"
	case CommandSchedule:
		return "Show the weekly schedule"
	case CommandLastLessons:
		return "Show the last lesson of each day"
	case CommandExams:
		return "Show upcoming exams"
	}
	return ""
}

// Choice is a single inline button.
type Choice struct {
	Label  string
	Screen Screen
}

// Keyboard is an ordered list of button rows.
type Keyboard [][]Choice

func (k Keyboard) Markup() *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, 0, len(k))
	for _, row := range k {
		buttons := make([]tele.InlineButton, 0, len(row))
		for _, ch := range row {
			buttons = append(buttons, tele.InlineButton{Text: ch.Label, Data: ch.Screen.Tag()})
		}
		rows = append(rows, buttons)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func MainMenu() Keyboard {
	return Keyboard{
		{{"Next lesson", ScreenNextLesson}, {"Weekly schedule", ScreenSchedule}},
		{{"Last lessons per day", ScreenLastLessons}, {"Upcoming exams", ScreenExams}},
	}
}

func BackMenu() Keyboard {
	return Keyboard{
		{{"Back to menu", ScreenMenu}},
	}
}

// Response is a rendered screen ready for delivery. Screen is a label used
// for logging and the journal.
type Response struct {
	Screen   string
	Text     string
	Keyboard Keyboard
}

const (
	WelcomeText       = "Welcome to the Edupage bot.\n\nChoose an action from the menu below:"
	UnknownActionText = "Unknown action."
	UnavailableText   = "Portal is unavailable right now. Try again later."
	NoDataText        = "No data available."
)

func welcomeResponse() Response {
	return Response{Screen: ScreenMenu.String(), Text: WelcomeText, Keyboard: MainMenu()}
}

func helpResponse() Response {
	var names []string
	for _, c := range Commands {
		if _, ok := c.Screen(); ok {
			names = append(names, c.Endpoint())
		}
	}
	return Response{
		Screen:   "help",
		Text:     "Available commands: " + strings.Join(names, ", "),
		Keyboard: MainMenu(),
	}
}

func unknownResponse() Response {
	return Response{Screen: "unknown", Text: UnknownActionText, Keyboard: MainMenu()}
}

func ackResponse(s Screen) Response {
	return Response{Screen: s.String() + ":ack", Text: ackText(s), Keyboard: MainMenu()}
}

func contentResponse(s Screen, text string) Response {
	return Response{Screen: s.String(), Text: text, Keyboard: BackMenu()}
}

func unavailableResponse(s Screen) Response {
	return Response{Screen: s.String() + ":unavailable", Text: UnavailableText, Keyboard: BackMenu()}
}

func ackText(s Screen) string {
	switch s {
	case ScreenNextLesson:
		return "Fetching next lesson..."
	case ScreenSchedule:
		return "Fetching weekly schedule..."
	case ScreenLastLessons:
		return "Fetching last lessons per day..."
	case ScreenExams:
		return "Fetching upcoming exams..."
	}
	return "Fetching..."
}

// Screen returns the data screen a command opens. Start and Help do not open
// a data screen.
func (c Command) Screen() (Screen, bool) {
	switch c {
	case CommandNextLesson:
		return ScreenNextLesson, true
	case CommandSchedule:
		return ScreenSchedule, true
	case CommandLastLessons:
		return ScreenLastLessons, true
	case CommandExams:
		return ScreenExams, true
	}
	return 0, false
}
