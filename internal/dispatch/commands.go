package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/mood"
)

const (
	usageNote   = "Usage: .note nick message goes here"
	usageSeen   = "Usage: .seen nick"
	usageWall   = "Usage: .wall number OR .wall search keyword OR .wall page number keyword"
	usageWrite  = "Usage: .write nick quote goes here"
	usageLastFM = "Usage: .lastfm yourusername"
)

func (e *Engine) respondNotePublic(sender, text string, ctx chat.Context) {
	e.respondNote(sender, text, ctx, true)
}

func (e *Engine) respondNotePrivate(sender, text string, ctx chat.Context) {
	e.respondNote(sender, text, ctx, false)
}

func (e *Engine) respondNote(sender, text string, ctx chat.Context, public bool) {
	if !public {
		ctx = ctx.WithChannel(sender)
	}

	nick, note, ok := splitTrailing(text)
	if !ok {
		chat.Speak(e.emitter, ctx, usageNote)
		return
	}

	e.store.AddNote(sender, nick, note, public)

	template := e.moods.Resolve(mood.VerbCompliant, e.disposition(sender))
	e.emitter.Emit(ctx, template.Text+" Note left for "+nick, template.Style)
}

func (e *Engine) respondSeen(sender, text string, ctx chat.Context) {
	first := strings.Index(text, " ")
	if first < 0 {
		chat.Speak(e.emitter, ctx, usageSeen)
		return
	}
	e.store.CheckLastSeen(ctx, text[first+1:])
}

func (e *Engine) respondWall(sender, text string, ctx chat.Context) {
	first := strings.Index(text, " ")
	if first < 0 {
		e.store.RandomWallQuote(ctx)
		return
	}

	second := strings.Index(text[first+1:], " ")
	if second < 0 {
		e.store.ShowWallQuote(ctx, text[first+1:], sender)
		return
	}
	second += first + 1

	verb := text[first+1 : second]
	rest := text[second+1:]
	switch verb {
	case "search":
		e.store.SearchWallQuotes(ctx, rest, 0)
		return
	case "page":
		pageText, keyword, ok := splitTrailing(text[first+1:])
		if ok {
			page, err := strconv.Atoi(pageText)
			if err == nil && page >= 0 {
				e.store.SearchWallQuotes(ctx, keyword, page)
				return
			}
		}
	}

	chat.Speak(e.emitter, ctx, usageWall)
}

func (e *Engine) respondWrite(sender, text string, ctx chat.Context) {
	nick, quote, ok := splitTrailing(text)
	if !ok {
		chat.Speak(e.emitter, ctx, usageWrite)
		return
	}

	index := e.store.AddWallQuote(sender, nick, quote)

	template := e.moods.Resolve(mood.VerbCompliant, e.disposition(sender))
	e.emitter.Emit(ctx, fmt.Sprintf("%s Wall #%s added.", template.Text, index), template.Style)
}

func (e *Engine) respondNowPlaying(sender, text string, ctx chat.Context) {
	username, ok := e.store.LastFMUsername(sender)
	if !ok || username == "" {
		chat.Speak(e.emitter, ctx, sender+" is not registered for Last.FM support. PM me '.lastfm yourusername' to register.")
		return
	}
	if e.lastfm == nil {
		return
	}
	e.lastfm.RecentTrack(ctx, sender, username)
}

func (e *Engine) respondLastFMRegister(sender, text string, ctx chat.Context) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		chat.Speak(e.emitter, ctx, usageLastFM)
		return
	}

	e.store.RegisterLastFM(sender, fields[1])
	chat.Speak(e.emitter, ctx, "You are now registered for Last.FM integration! Type .np in the main channel to show what you're listening to!")
}

func (e *Engine) respondYouTube(sender, text string, ctx chat.Context) {
	if e.youtube == nil {
		return
	}
	fields := strings.Fields(text)
	e.youtube.VideoSummary(ctx, fields[1])
}

func (e *Engine) respondHello(sender, text string, ctx chat.Context) {
	e.moods.DeliverTo(e.emitter, ctx, mood.VerbGreeting, e.disposition(sender), sender)
}

func (e *Engine) respondAction(sender, text string, ctx chat.Context) {
	match := actionPattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return
	}
	if strings.ToLower(match[1]) == "sneezes" {
		chat.Speak(e.emitter, ctx, "Bless you, "+sender)
	}
}

func (e *Engine) respondVideoURL(sender, text string, ctx chat.Context) {
	if e.youtube == nil {
		return
	}
	match := videoURLPattern.FindStringSubmatch(text)
	if match == nil || match[7] == "" {
		return
	}
	e.youtube.VideoSummary(ctx, match[7])
}
