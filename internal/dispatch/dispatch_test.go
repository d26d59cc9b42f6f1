package dispatch

import (
	"strings"
	"testing"
	"time"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/mood"
	"github.com/lindenhall/squire/internal/store"
)

type recordedLine struct {
	ctx   chat.Context
	text  string
	style chat.Style
}

type fakeEmitter struct {
	lines []recordedLine
}

func (f *fakeEmitter) Emit(ctx chat.Context, text string, style chat.Style) {
	f.lines = append(f.lines, recordedLine{ctx: ctx, text: text, style: style})
}

func (f *fakeEmitter) last(t *testing.T) recordedLine {
	t.Helper()
	if len(f.lines) == 0 {
		t.Fatalf("expected at least one emitted line")
	}
	return f.lines[len(f.lines)-1]
}

type nullPersister struct{}

func (nullPersister) Save([]byte) error     { return nil }
func (nullPersister) Load() ([]byte, error) { return nil, nil }

type recordedLookup struct {
	ctx      chat.Context
	nick     string
	username string
	videoID  string
}

type fakeLookups struct {
	tracks []recordedLookup
	videos []recordedLookup
}

func (f *fakeLookups) RecentTrack(ctx chat.Context, ircNick, username string) {
	f.tracks = append(f.tracks, recordedLookup{ctx: ctx, nick: ircNick, username: username})
}

func (f *fakeLookups) VideoSummary(ctx chat.Context, videoID string) {
	f.videos = append(f.videos, recordedLookup{ctx: ctx, videoID: videoID})
}

type engineHarness struct {
	engine  *Engine
	emitter *fakeEmitter
	lookups *fakeLookups
	store   *store.Service
	now     time.Time
}

func newEngineHarness(t *testing.T) *engineHarness {
	t.Helper()
	moods, err := mood.NewTable(mood.TableConfig{Intn: func(n int) int { return 0 }})
	if err != nil {
		t.Fatalf("failed to build mood table: %v", err)
	}
	h := &engineHarness{
		emitter: &fakeEmitter{},
		lookups: &fakeLookups{},
		now:     time.Unix(1700000000, 0),
	}
	masters := []string{"Apoch"}
	socialState, err := store.NewService(store.ServiceConfig{
		Snapshots: nullPersister{},
		Emitter:   h.emitter,
		Moods:     moods,
		Masters:   masters,
		Clock:     func() time.Time { return h.now },
		Intn:      func(n int) int { return 0 },
	})
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	engine, err := NewEngine(Config{
		Store:   socialState,
		Moods:   moods,
		Emitter: h.emitter,
		LastFM:  h.lookups,
		YouTube: h.lookups,
		Masters: masters,
	})
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	h.engine = engine
	h.store = socialState
	return h
}

func TestUnmatchedMessageFallsThroughSilently(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", "nothing to see here", chat.Context{Channel: "#lobby"})
	if len(h.emitter.lines) != 0 {
		t.Fatalf("expected silence, got %#v", h.emitter.lines)
	}
}

func TestFirstMatchingFilterWinsExclusively(t *testing.T) {
	h := newEngineHarness(t)
	// ".note" would also satisfy a hypothetical later catch-all; exactly one
	// responder must run, so exactly one ack is emitted.
	h.engine.HandlePublic("alice", ".note bob hi there", chat.Context{Channel: "#lobby"})
	if len(h.emitter.lines) != 1 {
		t.Fatalf("expected exactly one response, got %#v", h.emitter.lines)
	}
	if got := h.emitter.last(t).text; !strings.HasSuffix(got, "Note left for bob") {
		t.Fatalf("unexpected ack: %q", got)
	}
}

func TestPublicDispatchDrainsNotesAndUpdatesLastSeen(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", ".note bob first", chat.Context{Channel: "#lobby"})
	h.engine.HandlePublic("alice", ".note bob second", chat.Context{Channel: "#lobby"})

	h.emitter.lines = nil
	h.now = h.now.Add(time.Minute)
	h.engine.HandlePublic("Bob", "morning all", chat.Context{Channel: "#lobby"})

	if len(h.emitter.lines) != 2 {
		t.Fatalf("expected both notes delivered in one pass, got %#v", h.emitter.lines)
	}
	if !strings.Contains(h.emitter.lines[0].text, "first") || !strings.Contains(h.emitter.lines[1].text, "second") {
		t.Fatalf("expected oldest-first drain, got %#v", h.emitter.lines)
	}

	h.engine.HandlePublic("carol", ".seen bob", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != "bob was last seen 0 seconds ago" {
		t.Fatalf("expected last-seen update from the utterance, got %q", got)
	}
}

func TestLastSeenUpdatesEvenWhenCommandMatches(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("dave", ".wall", chat.Context{Channel: "#lobby"})
	h.engine.HandlePublic("erin", ".seen dave", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != "dave was last seen 0 seconds ago" {
		t.Fatalf("dispatch outcome must not gate last-seen, got %q", got)
	}
}

func TestPrivateDispatchReroutesRepliesToSender(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandleMessage("alice", ".lastfm alice-fm", chat.Context{Channel: "squire"})
	line := h.emitter.last(t)
	if line.ctx.Channel != "alice" {
		t.Fatalf("private reply should route to the sender, got %q", line.ctx.Channel)
	}
	if !strings.HasPrefix(line.text, "You are now registered for Last.FM integration!") {
		t.Fatalf("unexpected registration reply: %q", line.text)
	}
}

func TestPrivateNoteDeliversPrivately(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePrivate("alice", ".note bob secret stuff", chat.Context{Channel: "squire"})
	if got := h.emitter.last(t).ctx.Channel; got != "alice" {
		t.Fatalf("private note ack should go back to sender, got %q", got)
	}

	h.emitter.lines = nil
	h.engine.HandlePublic("bob", "hello everyone", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).ctx.Channel; got != "bob" {
		t.Fatalf("privately left note should deliver as PM, got %q", got)
	}
}

func TestJoinFiresConfiguredGreeting(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePrivate("Apoch", ".admin greet newbie true bows deeply", chat.Context{Channel: "squire"})

	h.emitter.lines = nil
	h.engine.HandleJoin(chat.Context{Channel: "#lobby"}, "Newbie")
	line := h.emitter.last(t)
	if line.text != "bows deeply" || line.style != chat.StyleAction {
		t.Fatalf("unexpected greeting: %#v", line)
	}
	if line.ctx.Channel != "#lobby" {
		t.Fatalf("greeting should fire in the joined channel, got %q", line.ctx.Channel)
	}
}

func TestAdminRequiresAllowList(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePrivate("mallory", ".admin obliteratewall", chat.Context{Channel: "squire"})
	if len(h.emitter.lines) != 0 {
		t.Fatalf("unauthorized admin must be ignored silently, got %#v", h.emitter.lines)
	}

	h.engine.HandlePrivate("apoch", ".admin obliteratewall", chat.Context{Channel: "squire"})
	if got := h.emitter.last(t).text; got != "Kaboom!" {
		t.Fatalf("allow-listed admin should succeed, got %q", got)
	}
}

func TestAdminWallDelete(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", ".write bob a keeper", chat.Context{Channel: "#lobby"})
	h.engine.HandlePrivate("Apoch", ".admin walldelete 1", chat.Context{Channel: "squire"})
	if got := h.emitter.last(t).text; got != "Wall 1 deleted." {
		t.Fatalf("unexpected admin reply: %q", got)
	}

	h.engine.HandlePublic("carol", ".wall 1", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; !strings.HasSuffix(got, "Wall #1 doesn't exist.") {
		t.Fatalf("deleted quote should be unreachable, got %q", got)
	}
}

func TestAdminPuppetSpeaksIntoTarget(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePrivate("Apoch", ".admin puppet #lobby good evening", chat.Context{Channel: "squire"})
	line := h.emitter.last(t)
	if line.ctx.Channel != "#lobby" || line.text != "good evening" {
		t.Fatalf("unexpected puppet line: %#v", line)
	}
}

func TestWallCommandForms(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", ".write bob quotable", chat.Context{Channel: "#lobby"})

	h.emitter.lines = nil
	h.engine.HandlePublic("carol", ".wall 1", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; !strings.Contains(got, "quotable") {
		t.Fatalf("expected show form, got %q", got)
	}

	h.engine.HandlePublic("carol", ".wall search quotable", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; !strings.Contains(got, "quotable") {
		t.Fatalf("expected search form, got %q", got)
	}

	h.engine.HandlePublic("carol", ".wall bogus input here", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != usageWall {
		t.Fatalf("expected usage reply, got %q", got)
	}
}

func TestUsageRepliesLeaveStateUnchanged(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", ".note bob", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != usageNote {
		t.Fatalf("expected note usage, got %q", got)
	}
	h.engine.HandlePublic("alice", ".seen", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != usageSeen {
		t.Fatalf("expected seen usage, got %q", got)
	}
	h.engine.HandlePublic("alice", ".write bob", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != usageWrite {
		t.Fatalf("expected write usage, got %q", got)
	}

	stats := h.store.Summarize()
	if stats.PendingNotes != 0 || stats.WallTotal != 0 {
		t.Fatalf("malformed commands must not mutate state: %#v", stats)
	}
}

func TestNowPlayingRequiresRegistration(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", ".np", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != "alice is not registered for Last.FM support. PM me '.lastfm yourusername' to register." {
		t.Fatalf("unexpected unregistered reply: %q", got)
	}
	if len(h.lookups.tracks) != 0 {
		t.Fatalf("no lookup should fire for unregistered nicks")
	}

	h.engine.HandlePrivate("alice", ".lastfm alice-fm", chat.Context{Channel: "squire"})
	h.engine.HandlePublic("alice", ".np", chat.Context{Channel: "#lobby"})
	if len(h.lookups.tracks) != 1 {
		t.Fatalf("expected one track lookup, got %d", len(h.lookups.tracks))
	}
	lookup := h.lookups.tracks[0]
	if lookup.nick != "alice" || lookup.username != "alice-fm" || lookup.ctx.Channel != "#lobby" {
		t.Fatalf("unexpected lookup: %#v", lookup)
	}
}

func TestYouTubeCommandExtractsVideoID(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", ".youtube dQw4w9WgXcQ", chat.Context{Channel: "#lobby"})
	if len(h.lookups.videos) != 1 || h.lookups.videos[0].videoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected video lookup: %#v", h.lookups.videos)
	}
}

func TestHelloResponderGreetsSender(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", "hello bot, how are you", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != "Hello, puny human named alice." {
		t.Fatalf("unexpected greeting: %q", got)
	}

	h.engine.HandlePublic("Apoch", "hey awesome overlord", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != "I love you Apoch. You're the best." {
		t.Fatalf("expected favored greeting, got %q", got)
	}
}

func TestSneezeActionGetsBlessed(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", "\x01ACTION sneezes\x01", chat.Context{Channel: "#lobby"})
	if got := h.emitter.last(t).text; got != "Bless you, alice" {
		t.Fatalf("unexpected reply: %q", got)
	}

	h.emitter.lines = nil
	h.engine.HandlePublic("alice", "\x01ACTION waves\x01", chat.Context{Channel: "#lobby"})
	if len(h.emitter.lines) != 0 {
		t.Fatalf("other actions should be ignored, got %#v", h.emitter.lines)
	}
}

func TestURLPreviewDisabledByDefault(t *testing.T) {
	h := newEngineHarness(t)
	h.engine.HandlePublic("alice", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", chat.Context{Channel: "#lobby"})
	if len(h.lookups.videos) != 0 {
		t.Fatalf("url preview should be off by default, got %#v", h.lookups.videos)
	}
}
