package dispatch

import (
	"strings"

	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/mood"
)

// respondAdmin handles the .admin command family. Callers off the
// allow-list are ignored with no error and no hint, as are malformed
// subcommands.
func (e *Engine) respondAdmin(sender, text string, ctx chat.Context) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return
	}
	if !mood.IsMaster(sender, e.masters) {
		e.logger.Debug("unauthorized admin attempt ignored", zap.String("sender", sender))
		return
	}

	switch strings.ToLower(fields[1]) {
	case "confuse":
		e.moods.Deliver(e.emitter, ctx, mood.VerbConfused, mood.DispositionNeutral)

	case "puppet":
		if len(fields) < 4 {
			return
		}
		target := fields[2]
		chat.Speak(e.emitter, ctx.WithChannel(target), strings.Join(fields[3:], " "))

	case "walldelete":
		if len(fields) < 3 {
			return
		}
		target := fields[2]
		e.store.DeleteWallQuote(target)
		chat.Speak(e.emitter, ctx, "Wall "+target+" deleted.")

	case "greet":
		if len(fields) < 5 {
			return
		}
		target := fields[2]
		isAction := fields[3] == "true"
		message := strings.Join(fields[4:], " ")
		e.store.AddGreeting(target, isAction, message)
		chat.Speak(e.emitter, ctx, "Greeting configured.")

	case "greetdelete":
		if len(fields) < 3 {
			return
		}
		e.store.RemoveGreeting(fields[2])
		chat.Speak(e.emitter, ctx, "Greeting removed.")

	case "obliteratewall":
		e.store.ObliterateWall()
		chat.Speak(e.emitter, ctx, "Kaboom!")
	}
}
