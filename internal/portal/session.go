package portal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// Placeholder is returned by queries that have no data source wired yet.
	Placeholder = "TODO"

	NoMoreLessons = "No more lessons today"
)

var ErrMissingCredentials = errors.New("portal: missing credentials")

// Session is the read-only view of the school portal used by the bot.
type Session interface {
	NextLesson(ctx context.Context) (string, error)
	WeeklySchedule(ctx context.Context) (string, error)
	LastLessons(ctx context.Context) (string, error)
	UpcomingExams(ctx context.Context) (string, error)
}

type Credentials struct {
	Username  string `env:"EDUPAGE_USERNAME"`
	Password  string `env:"EDUPAGE_PASSWORD"`
	Subdomain string `env:"EDUPAGE_SCHOOL_SUBDOMAIN"`
}

// Validate reports every empty field at once.
func (c Credentials) Validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if c.Subdomain == "" {
		missing = append(missing, "subdomain")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Lesson is a single timetable entry for one day.
type Lesson struct {
	Start   time.Time
	Subject string
	Room    string
}

// TimetableFunc returns the lessons scheduled on the given day.
type TimetableFunc func(ctx context.Context, day time.Time) ([]Lesson, error)

type Option func(*Client)

// WithTimetable sets the source used by NextLesson.
func WithTimetable(fn TimetableFunc) Option {
	return func(c *Client) { c.timetable = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client is the default Session. Queries without a data source answer with
// Placeholder.
type Client struct {
	creds     Credentials
	timetable TimetableFunc
	now       func() time.Time
}

func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{creds: creds, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Subdomain() string { return c.creds.Subdomain }

func (c *Client) NextLesson(ctx context.Context) (string, error) {
	if c.timetable == nil {
		return Placeholder, nil
	}
	now := c.now()
	lessons, err := c.timetable(ctx, now)
	if err != nil {
		return "", fmt.Errorf("fetch timetable: %w", err)
	}
	return NextLessonText(lessons, now), nil
}

func (c *Client) WeeklySchedule(ctx context.Context) (string, error) {
	return Placeholder, ctx.Err()
}

func (c *Client) LastLessons(ctx context.Context) (string, error) {
	return Placeholder, ctx.Err()
}

func (c *Client) UpcomingExams(ctx context.Context) (string, error) {
	return Placeholder, ctx.Err()
}

// NextLessonText describes the first lesson starting strictly after now.
func NextLessonText(lessons []Lesson, now time.Time) string {
	sorted := make([]Lesson, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	for _, l := range sorted {
		if !l.Start.After(now) {
			continue
		}
		return fmt.Sprintf("Next lesson at %s\nRoom %s\n%s",
			l.Start.Format("2006.01.02 15:04"), orNA(l.Room), orNA(l.Subject))
	}
	return NoMoreLessons
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
