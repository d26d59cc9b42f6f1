package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/database"
	"github.com/lindenhall/squire/internal/dispatch"
	"github.com/lindenhall/squire/internal/mood"
	"github.com/lindenhall/squire/internal/server"
	"github.com/lindenhall/squire/internal/store"
)

const channelLobby = "#lobby"

type capturedLine struct {
	ctx  chat.Context
	text string
}

type captureEmitter struct {
	lines []capturedLine
}

func (c *captureEmitter) Emit(ctx chat.Context, text string, style chat.Style) {
	c.lines = append(c.lines, capturedLine{ctx: ctx, text: text})
}

func (c *captureEmitter) reset() {
	c.lines = nil
}

func buildBot(testContext *testing.T, snapshots *database.SnapshotStore, now time.Time) (*dispatch.Engine, *store.Service, *captureEmitter) {
	testContext.Helper()

	moods, err := mood.NewTable(mood.TableConfig{Intn: func(n int) int { return 0 }})
	if err != nil {
		testContext.Fatalf("failed to build mood table: %v", err)
	}
	emitter := &captureEmitter{}
	socialStore, err := store.NewService(store.ServiceConfig{
		Snapshots: snapshots,
		Emitter:   emitter,
		Moods:     moods,
		Masters:   []string{"overlord"},
		Clock:     func() time.Time { return now },
		Logger:    zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build store: %v", err)
	}
	blob, err := snapshots.Load()
	if err != nil {
		testContext.Fatalf("failed to load snapshot: %v", err)
	}
	socialStore.Restore(blob)

	engine, err := dispatch.NewEngine(dispatch.Config{
		Store:   socialStore,
		Moods:   moods,
		Emitter: emitter,
		Masters: []string{"overlord"},
		Logger:  zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build engine: %v", err)
	}
	return engine, socialStore, emitter
}

func TestBotFlowSurvivesRestart(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite("file:botflow?mode=memory&cache=shared", zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	snapshots, err := database.NewSnapshotStore(db)
	if err != nil {
		testContext.Fatalf("failed to build snapshot store: %v", err)
	}

	noteTime := time.Unix(1700000000, 0)
	engine, _, emitter := buildBot(testContext, snapshots, noteTime)

	// Alice leaves a note and a wall quote. Both mutations are persisted.
	engine.HandleMessage("Alice", ".note bob see you at nine", chat.Context{Channel: channelLobby})
	engine.HandleMessage("Alice", ".write bob that was the worst idea yet", chat.Context{Channel: channelLobby})
	if len(emitter.lines) != 2 {
		testContext.Fatalf("expected two acknowledgements, got %#v", emitter.lines)
	}

	// Simulate a process restart: a fresh store is rebuilt from the same
	// database and must still hold the note and the quote.
	deliveryTime := noteTime.Add(3 * 24 * time.Hour)
	engine, socialStore, emitter := buildBot(testContext, snapshots, deliveryTime)

	engine.HandleMessage("bob", "morning all", chat.Context{Channel: channelLobby})
	if len(emitter.lines) != 1 {
		testContext.Fatalf("expected exactly one delivered note, got %#v", emitter.lines)
	}
	if got := emitter.lines[0].text; got != "bob: <Alice> (3 days ago) see you at nine" {
		testContext.Fatalf("unexpected note delivery: %q", got)
	}

	emitter.reset()
	engine.HandleMessage("Alice", ".wall 1", chat.Context{Channel: channelLobby})
	if len(emitter.lines) != 1 {
		testContext.Fatalf("expected one wall quote, got %#v", emitter.lines)
	}
	if got := emitter.lines[0].text; got != "Wall #1 - <bob> (3 days ago) that was the worst idea yet" {
		testContext.Fatalf("unexpected wall quote: %q", got)
	}

	// The delivered note is gone after yet another restart.
	engine, _, emitter = buildBot(testContext, snapshots, deliveryTime)
	engine.HandleMessage("bob", "still here", chat.Context{Channel: channelLobby})
	if len(emitter.lines) != 0 {
		testContext.Fatalf("note must be delivered exactly once, got %#v", emitter.lines)
	}

	// The ops surface reports the same state the bot sees.
	handler, err := server.NewHTTPHandler(server.Dependencies{
		Store:      socialStore,
		Dispatcher: server.NewLineDispatcher(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build http handler: %v", err)
	}
	testServer := httptest.NewServer(handler)
	defer testServer.Close()

	response, err := http.Get(testServer.URL + "/api/stats")
	if err != nil {
		testContext.Fatalf("stats request failed: %v", err)
	}
	defer response.Body.Close()

	var stats store.Stats
	if err := json.NewDecoder(response.Body).Decode(&stats); err != nil {
		testContext.Fatalf("failed to decode stats: %v", err)
	}
	if stats.PendingNotes != 0 {
		testContext.Fatalf("unexpected pending notes %d", stats.PendingNotes)
	}
	if stats.WallLive != 1 {
		testContext.Fatalf("unexpected live wall count %d", stats.WallLive)
	}
	if stats.TrackedNicks < 2 {
		testContext.Fatalf("expected alice and bob to be tracked, got %d", stats.TrackedNicks)
	}
}
