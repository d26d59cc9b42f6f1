package mood

import (
	"errors"
	"testing"

	"github.com/lindenhall/squire/internal/chat"
)

func firstPick(n int) int { return 0 }

func newTestTable(t *testing.T, entries map[Verb]map[Disposition][]Template) *Table {
	t.Helper()
	table, err := NewTable(TableConfig{Entries: entries, Intn: firstPick})
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return table
}

func TestNewTableRejectsMissingTerminalFallback(t *testing.T) {
	entries := map[Verb]map[Disposition][]Template{
		VerbGreeting: {
			DispositionNeutral: {{Style: chat.StyleNormal, Text: "hello"}},
		},
	}
	_, err := NewTable(TableConfig{Entries: entries})
	if !errors.Is(err, ErrMissingTerminalFallback) {
		t.Fatalf("expected terminal fallback error, got %v", err)
	}
}

func TestResolveKnownVerbAndDisposition(t *testing.T) {
	entries := map[Verb]map[Disposition][]Template{
		VerbGreeting: {
			DispositionFavored: {{Style: chat.StyleAction, Text: "worships $target$"}},
			DispositionNeutral: {{Style: chat.StyleNormal, Text: "hello $target$"}},
		},
		VerbConfused: {
			DispositionNeutral: {{Style: chat.StyleNormal, Text: "derp"}},
		},
	}
	table := newTestTable(t, entries)

	selected := table.Resolve(VerbGreeting, DispositionFavored)
	if selected.Text != "worships $target$" || selected.Style != chat.StyleAction {
		t.Fatalf("unexpected template: %#v", selected)
	}
}

func TestResolveUnknownVerbFallsBackToConfused(t *testing.T) {
	entries := map[Verb]map[Disposition][]Template{
		VerbConfused: {
			DispositionNeutral: {{Style: chat.StyleNormal, Text: "derp"}},
		},
	}
	table := newTestTable(t, entries)

	selected := table.Resolve(Verb("interpretive-dance"), DispositionNeutral)
	if selected.Text != "derp" {
		t.Fatalf("expected confused fallback, got %#v", selected)
	}
}

func TestResolveUnknownDispositionFallsBackToNeutral(t *testing.T) {
	entries := map[Verb]map[Disposition][]Template{
		VerbPanic: {
			DispositionNeutral: {{Style: chat.StyleNormal, Text: "oh noes"}},
		},
		VerbConfused: {
			DispositionNeutral: {{Style: chat.StyleNormal, Text: "derp"}},
		},
	}
	table := newTestTable(t, entries)

	selected := table.Resolve(VerbPanic, Disposition("ecstatic"))
	if selected.Text != "oh noes" {
		t.Fatalf("expected neutral fallback, got %#v", selected)
	}
}

func TestResolveUnknownVerbAndDispositionTerminates(t *testing.T) {
	entries := map[Verb]map[Disposition][]Template{
		VerbConfused: {
			DispositionFavored: {{Style: chat.StyleNormal, Text: "sorry"}},
			DispositionNeutral: {{Style: chat.StyleNormal, Text: "derp"}},
		},
	}
	table := newTestTable(t, entries)

	selected := table.Resolve(Verb("unknown"), Disposition("unknown"))
	if selected.Text != "derp" {
		t.Fatalf("expected terminal confused/neutral template, got %#v", selected)
	}
}

func TestRenderSubstitutesTarget(t *testing.T) {
	template := Template{Style: chat.StyleNormal, Text: "Hello, puny human named $target$."}
	if got := template.Render("alice"); got != "Hello, puny human named alice." {
		t.Fatalf("unexpected rendering: %q", got)
	}
}

func TestDefaultTableIsValid(t *testing.T) {
	if _, err := NewTable(TableConfig{}); err != nil {
		t.Fatalf("default entries should validate: %v", err)
	}
}

func TestDispositionTowardMasters(t *testing.T) {
	masters := []string{"Apoch"}
	if got := DispositionToward("apoch", masters); got != DispositionFavored {
		t.Fatalf("expected favored disposition for allow-listed nick, got %q", got)
	}
	if got := DispositionToward("random", masters); got != DispositionNeutral {
		t.Fatalf("expected neutral disposition, got %q", got)
	}
}
