// Package mood resolves the bot's response templates. Every reply the bot
// phrases itself is drawn from a two-dimensional table keyed by an action
// verb and the bot's disposition toward the user it is addressing.
package mood

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/lindenhall/squire/internal/chat"
)

// Verb names the kind of response being phrased.
type Verb string

const (
	// VerbGreeting phrases a hello aimed at a user.
	VerbGreeting Verb = "greeting"
	// VerbCompliant acknowledges a command the bot carried out.
	VerbCompliant Verb = "compliant"
	// VerbConfused reacts to something the bot cannot make sense of. It is
	// also the fallback verb for any unregistered verb.
	VerbConfused Verb = "confused"
	// VerbPanic reacts to an external failure.
	VerbPanic Verb = "panic"
)

// Disposition is the bot's computed attitude toward a user.
type Disposition string

const (
	// DispositionFavored applies to nicks on the privileged allow-list.
	DispositionFavored Disposition = "favored"
	// DispositionNeutral applies to everyone else, and is the fallback for
	// any verb that has no entry for the requested disposition.
	DispositionNeutral Disposition = "neutral"
	// DispositionHostile is carried as template data only; disposition
	// resolution never produces it.
	DispositionHostile Disposition = "hostile"
)

// targetPlaceholder is substituted with the target nick when a template is
// rendered against one.
const targetPlaceholder = "$target$"

// ErrMissingTerminalFallback indicates the table lacks the confused/neutral
// entry every resolution chain must be able to terminate at.
var ErrMissingTerminalFallback = errors.New("mood: confused/neutral templates are required")

// Template is one phrasable response. Text may contain a single $target$
// placeholder.
type Template struct {
	Style chat.Style
	Text  string
}

// Render substitutes the target placeholder, when present, with the nick.
func (t Template) Render(targetNick string) string {
	return strings.ReplaceAll(t.Text, targetPlaceholder, targetNick)
}

// TableConfig describes the dependencies of a template table.
type TableConfig struct {
	// Entries maps verb -> disposition -> equally weighted templates.
	// Nil selects the built-in defaults.
	Entries map[Verb]map[Disposition][]Template
	// Intn draws a uniform random int in [0, n). Nil selects math/rand.
	Intn func(n int) int
}

// Table holds the verb/disposition template entries.
type Table struct {
	entries map[Verb]map[Disposition][]Template
	intn    func(n int) int
}

// NewTable validates the entries and constructs a table. The terminal
// fallback (confused verb, neutral disposition) must resolve to at least
// one template; its absence is a configuration error.
func NewTable(cfg TableConfig) (*Table, error) {
	entries := cfg.Entries
	if entries == nil {
		entries = defaultEntries()
	}
	if len(entries[VerbConfused][DispositionNeutral]) == 0 {
		return nil, ErrMissingTerminalFallback
	}
	for verb, dispositions := range entries {
		for disposition, templates := range dispositions {
			if len(templates) == 0 {
				return nil, fmt.Errorf("mood: empty template set for %s/%s", verb, disposition)
			}
		}
	}

	intn := cfg.Intn
	if intn == nil {
		intn = rand.Intn
	}
	return &Table{entries: entries, intn: intn}, nil
}

// Resolve returns one template for the verb and disposition, applying the
// fallback chain: unknown verb -> confused; unknown disposition for the
// resolved verb -> neutral; still unresolved -> confused/neutral.
func (t *Table) Resolve(verb Verb, disposition Disposition) Template {
	dispositions, ok := t.entries[verb]
	if !ok {
		dispositions = t.entries[VerbConfused]
	}

	templates, ok := dispositions[disposition]
	if !ok {
		templates = dispositions[DispositionNeutral]
	}
	if len(templates) == 0 {
		templates = t.entries[VerbConfused][DispositionNeutral]
	}

	return templates[t.intn(len(templates))]
}

// Deliver resolves a template with no target and emits it.
func (t *Table) Deliver(emitter chat.Emitter, ctx chat.Context, verb Verb, disposition Disposition) {
	selected := t.Resolve(verb, disposition)
	emitter.Emit(ctx, selected.Text, selected.Style)
}

// DeliverTo resolves a template, renders it against the target nick and
// emits it.
func (t *Table) DeliverTo(emitter chat.Emitter, ctx chat.Context, verb Verb, disposition Disposition, targetNick string) {
	selected := t.Resolve(verb, disposition)
	emitter.Emit(ctx, selected.Render(targetNick), selected.Style)
}

// DispositionToward computes the bot's attitude toward a nick: privileged
// nicks always resolve favored, everyone else neutral. The allow-list match
// is case-insensitive.
func DispositionToward(nick string, masters []string) Disposition {
	if IsMaster(nick, masters) {
		return DispositionFavored
	}
	return DispositionNeutral
}

// IsMaster reports whether the nick is on the privileged allow-list.
func IsMaster(nick string, masters []string) bool {
	for _, master := range masters {
		if strings.EqualFold(nick, master) {
			return true
		}
	}
	return false
}
