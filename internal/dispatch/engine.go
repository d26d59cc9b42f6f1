// Package dispatch routes every inbound chat event to exactly one handler.
// Two ordered filter/responder tables exist, one for public channels and
// one for direct messages; the first filter that matches wins the event
// outright, and an event no filter claims is dropped silently.
package dispatch

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/mood"
	"github.com/lindenhall/squire/internal/store"
)

var (
	errMissingStore   = errors.New("dispatch: store is required")
	errMissingMoods   = errors.New("dispatch: mood table is required")
	errMissingEmitter = errors.New("dispatch: emitter is required")
)

// TrackLookup resolves a registered listener's recent activity and
// eventually emits one sentence into the captured context.
type TrackLookup interface {
	RecentTrack(ctx chat.Context, ircNick, username string)
}

// VideoLookup resolves video metadata and eventually emits one sentence
// into the captured context.
type VideoLookup interface {
	VideoSummary(ctx chat.Context, videoID string)
}

// Config describes the collaborators of the dispatch engine.
type Config struct {
	Store   *store.Service
	Moods   *mood.Table
	Emitter chat.Emitter
	LastFM  TrackLookup
	YouTube VideoLookup
	// Masters is the privileged allow-list gating admin commands.
	Masters []string
	// URLPreview enables the free-text video URL responder. Off by default.
	URLPreview bool
	Logger     *zap.Logger
}

// handler pairs a filter with the responder that owns matching events.
type handler struct {
	name    string
	match   func(text string) bool
	respond func(sender, text string, ctx chat.Context)
}

// Engine holds the ordered handler tables.
type Engine struct {
	public  []handler
	private []handler

	store   *store.Service
	moods   *mood.Table
	emitter chat.Emitter
	lastfm  TrackLookup
	youtube VideoLookup
	masters []string
	logger  *zap.Logger
}

// NewEngine validates the configuration and builds the handler tables.
// Table order is priority order: prefix commands come before free-text
// catch-alls.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	if cfg.Moods == nil {
		return nil, errMissingMoods
	}
	if cfg.Emitter == nil {
		return nil, errMissingEmitter
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		store:   cfg.Store,
		moods:   cfg.Moods,
		emitter: cfg.Emitter,
		lastfm:  cfg.LastFM,
		youtube: cfg.YouTube,
		masters: cfg.Masters,
		logger:  logger,
	}

	urlMatch := func(string) bool { return false }
	if cfg.URLPreview {
		urlMatch = matchVideoURL
	}

	engine.public = []handler{
		{name: "note", match: matchCommand(".note"), respond: engine.respondNotePublic},
		{name: "now-playing", match: matchNowPlaying, respond: engine.respondNowPlaying},
		{name: "seen", match: matchCommand(".seen"), respond: engine.respondSeen},
		{name: "wall", match: matchCommand(".wall"), respond: engine.respondWall},
		{name: "write", match: matchCommand(".write"), respond: engine.respondWrite},
		{name: "youtube", match: matchYouTube, respond: engine.respondYouTube},
		{name: "hello", match: matchHello, respond: engine.respondHello},
		{name: "action", match: matchAction, respond: engine.respondAction},
		{name: "video-url", match: urlMatch, respond: engine.respondVideoURL},
	}

	engine.private = []handler{
		{name: "admin", match: matchAdmin, respond: engine.respondAdmin},
		{name: "note", match: matchCommand(".note"), respond: engine.respondNotePrivate},
		{name: "lastfm-register", match: matchCommand(".lastfm"), respond: engine.respondLastFMRegister},
		{name: "youtube", match: matchYouTube, respond: engine.respondYouTube},
		{name: "video-url", match: urlMatch, respond: engine.respondVideoURL},
		{name: "action", match: matchAction, respond: engine.respondAction},
	}

	return engine, nil
}

// filterAndRespond hands the event to the first matching handler. No match
// means no response at all.
func (e *Engine) filterAndRespond(table []handler, sender, text string, ctx chat.Context) {
	for _, h := range table {
		if h.match(text) {
			e.logger.Debug("event dispatched",
				zap.String("handler", h.name),
				zap.String("sender", sender),
				zap.String("channel", ctx.Channel))
			h.respond(sender, text, ctx)
			return
		}
	}
}

// HandleMessage routes an inbound message to the public or direct table
// depending on where it was delivered.
func (e *Engine) HandleMessage(sender, text string, ctx chat.Context) {
	if chat.IsPublicChannel(ctx.Channel) {
		e.HandlePublic(sender, text, ctx)
		return
	}
	e.HandlePrivate(sender, text, ctx)
}

// HandlePublic dispatches a public-channel event and then, regardless of
// the dispatch outcome, drains every pending note addressed to the speaker
// and records the speaker's activity.
func (e *Engine) HandlePublic(sender, text string, ctx chat.Context) {
	e.filterAndRespond(e.public, sender, text, ctx)

	// Terminates because every delivery removes the note it delivered.
	for e.store.DeliverNextNote(strings.ToLower(sender), ctx) {
	}

	e.store.UpdateLastSeen(sender)
}

// HandlePrivate reroutes the delivery context back to the sender before
// dispatch so replies arrive as direct messages.
func (e *Engine) HandlePrivate(sender, text string, ctx chat.Context) {
	e.filterAndRespond(e.private, sender, text, ctx.WithChannel(sender))
}

// HandleJoin fires the joining nick's configured greeting, if any.
func (e *Engine) HandleJoin(ctx chat.Context, joiner string) {
	e.store.GreetOnJoin(ctx, joiner)
}

func (e *Engine) disposition(nick string) mood.Disposition {
	return mood.DispositionToward(nick, e.masters)
}
