// Package store owns the bot's persisted social state: delayed notes, the
// quote wall, join greetings, last-seen tracking and Last.fm username
// registrations. Every mutation is followed by a full-state snapshot write
// through the configured Persister.
package store

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/mood"
	"github.com/lindenhall/squire/internal/timetext"
)

var (
	errMissingPersister = errors.New("store: snapshot persister is required")
	errMissingEmitter   = errors.New("store: emitter is required")
	errMissingMoods     = errors.New("store: mood table is required")
)

// Persister is the durable blob primitive the host environment provides.
// Load returns nil when nothing has been persisted yet.
type Persister interface {
	Save(blob []byte) error
	Load() ([]byte, error)
}

// ServiceConfig describes the dependencies of the social-state store.
type ServiceConfig struct {
	Snapshots Persister
	Emitter   chat.Emitter
	Moods     *mood.Table
	// Masters is the privileged allow-list driving disposition lookups.
	Masters []string
	// Clock stamps new records. Nil selects time.Now.
	Clock func() time.Time
	// Intn draws a uniform random int in [0, n). Nil selects math/rand.
	Intn   func(n int) int
	Logger *zap.Logger
}

// Service is the single owner of all live social-state collections.
type Service struct {
	mu sync.Mutex

	notes     []Note
	wall      []WallQuote
	greetings []Greeting
	lastSeen  map[string]time.Time
	lastfm    map[string]string

	snapshots Persister
	emitter   chat.Emitter
	moods     *mood.Table
	masters   []string
	clock     func() time.Time
	intn      func(n int) int
	logger    *zap.Logger
}

// NewService validates the configuration and constructs an empty store.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Snapshots == nil {
		return nil, errMissingPersister
	}
	if cfg.Emitter == nil {
		return nil, errMissingEmitter
	}
	if cfg.Moods == nil {
		return nil, errMissingMoods
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	intn := cfg.Intn
	if intn == nil {
		intn = rand.Intn
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		lastSeen:  make(map[string]time.Time),
		lastfm:    make(map[string]string),
		snapshots: cfg.Snapshots,
		emitter:   cfg.Emitter,
		moods:     cfg.Moods,
		masters:   cfg.Masters,
		clock:     clock,
		intn:      intn,
		logger:    logger,
	}, nil
}

// persist writes the full snapshot. Persistence failures are reported and
// swallowed; no store operation is fatal to the running bot.
// Callers hold s.mu.
func (s *Service) persist() {
	blob, err := s.encodeSnapshot()
	if err != nil {
		s.logger.Error("snapshot encoding failed", zap.Error(err))
		return
	}
	if err := s.snapshots.Save(blob); err != nil {
		s.logger.Error("snapshot write failed", zap.Error(err))
	}
}

func (s *Service) disposition(nick string) mood.Disposition {
	return mood.DispositionToward(nick, s.masters)
}

// AddNote queues a note for the recipient and persists. Argument validation
// is the caller's responsibility.
func (s *Service) AddNote(sender, recipient, text string, public bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = append(s.notes, Note{
		Sender:    sender,
		Recipient: strings.ToLower(recipient),
		Text:      text,
		CreatedAt: s.clock(),
		Public:    public,
	})
	s.persist()
}

// DeliverNextNote delivers the oldest pending note for the nick, if any,
// and reports whether one existed. Notes registered privately are rerouted
// to the recipient's own nick. Safe to call repeatedly until it reports
// false; the dispatch engine drains multi-note backlogs that way.
func (s *Service) DeliverNextNote(nick string, ctx chat.Context) bool {
	key := strings.ToLower(nick)

	s.mu.Lock()
	found := -1
	for i, note := range s.notes {
		if note.Recipient == key {
			found = i
			break
		}
	}
	if found < 0 {
		s.mu.Unlock()
		return false
	}

	note := s.notes[found]
	s.notes = append(s.notes[:found], s.notes[found+1:]...)
	s.persist()
	now := s.clock()
	s.mu.Unlock()

	delivery := ctx
	if !note.Public {
		delivery = ctx.WithChannel(key)
	}
	line := fmt.Sprintf("%s: <%s> (%s) %s", key, note.Sender, timetext.Describe(note.CreatedAt, now), note.Text)
	chat.Speak(s.emitter, delivery, line)
	return true
}

// AddGreeting installs the greeting for a nick, replacing any existing one.
func (s *Service) AddGreeting(nick string, isAction bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeGreetingLocked(nick)
	s.greetings = append(s.greetings, Greeting{
		Nick:     strings.ToLower(nick),
		IsAction: isAction,
		Message:  message,
	})
	s.persist()
}

// RemoveGreeting drops the greeting for a nick, persisting only on a hit.
func (s *Service) RemoveGreeting(nick string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeGreetingLocked(nick) {
		s.persist()
	}
}

func (s *Service) removeGreetingLocked(nick string) bool {
	for i, greeting := range s.greetings {
		if strings.EqualFold(greeting.Nick, nick) {
			s.greetings = append(s.greetings[:i], s.greetings[i+1:]...)
			return true
		}
	}
	return false
}

// GreetOnJoin emits the joining nick's greeting, when one is configured.
func (s *Service) GreetOnJoin(ctx chat.Context, joiner string) {
	s.mu.Lock()
	var selected *Greeting
	for i := range s.greetings {
		if strings.EqualFold(s.greetings[i].Nick, joiner) {
			selected = &s.greetings[i]
			break
		}
	}
	if selected == nil {
		s.mu.Unlock()
		return
	}
	greeting := *selected
	s.mu.Unlock()

	if greeting.IsAction {
		chat.Act(s.emitter, ctx, greeting.Message)
	} else {
		chat.Speak(s.emitter, ctx, greeting.Message)
	}
}

// UpdateLastSeen overwrites the nick's last-activity instant with now.
func (s *Service) UpdateLastSeen(nick string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen[strings.ToLower(nick)] = s.clock()
	s.persist()
}

// CheckLastSeen reports when the nick last spoke. Read-only.
func (s *Service) CheckLastSeen(ctx chat.Context, nick string) {
	s.mu.Lock()
	seenAt, known := s.lastSeen[strings.ToLower(nick)]
	now := s.clock()
	s.mu.Unlock()

	if !known {
		chat.Speak(s.emitter, ctx, fmt.Sprintf("%s has not been seen in recent memory.", nick))
		return
	}
	chat.Speak(s.emitter, ctx, fmt.Sprintf("%s was last seen %s", nick, timetext.Describe(seenAt, now)))
}

// RegisterLastFM maps an IRC nick to a Last.fm username, overwriting any
// previous registration.
func (s *Service) RegisterLastFM(nick, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastfm[strings.ToLower(nick)] = username
	s.persist()
}

// LastFMUsername returns the registered Last.fm username for a nick.
func (s *Service) LastFMUsername(nick string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.lastfm[strings.ToLower(nick)]
	return username, ok
}

// Summarize returns collection counts for the ops surface.
func (s *Service) Summarize() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := 0
	for _, quote := range s.wall {
		if !quote.Deleted {
			live++
		}
	}
	return Stats{
		PendingNotes:  len(s.notes),
		WallTotal:     len(s.wall),
		WallLive:      live,
		Greetings:     len(s.greetings),
		TrackedNicks:  len(s.lastSeen),
		Registrations: len(s.lastfm),
	}
}
