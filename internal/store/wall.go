package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/mood"
	"github.com/lindenhall/squire/internal/timetext"
)

// wallPageSize is the number of quotes emitted per search page, shared with
// the ops surface listing.
const wallPageSize = 5

// randomDrawBudget bounds the rejection sampling in RandomWallQuote. The
// budget is a probabilistic guard against a mostly-deleted wall, not a
// guarantee that a live quote is found.
const randomDrawBudget = 100

func formatWallQuote(quote WallQuote, now time.Time) string {
	return fmt.Sprintf("Wall #%s - <%s> (%s) %s",
		quote.Index, quote.AuthorNick, timetext.Describe(quote.CreatedAt, now), quote.Text)
}

// AddWallQuote appends a quote, assigns the next one-based decimal index
// and persists. Returns the assigned index.
func (s *Service) AddWallQuote(author, nick, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote := WallQuote{
		Index:      strconv.Itoa(len(s.wall) + 1),
		AuthorNick: strings.ToLower(nick),
		Text:       text,
		CreatedAt:  s.clock(),
	}
	s.wall = append(s.wall, quote)
	s.persist()
	return quote.Index
}

// ShowWallQuote emits the quote with the given index, or the confused-mood
// doesn't-exist reply when the index is unknown or the quote was deleted.
func (s *Service) ShowWallQuote(ctx chat.Context, index, requester string) {
	s.mu.Lock()
	var selected *WallQuote
	for i := range s.wall {
		if s.wall[i].Index == index && !s.wall[i].Deleted {
			selected = &s.wall[i]
			break
		}
	}
	var line string
	if selected != nil {
		line = formatWallQuote(*selected, s.clock())
	}
	s.mu.Unlock()

	if line != "" {
		chat.Speak(s.emitter, ctx, line)
		return
	}

	template := s.moods.Resolve(mood.VerbConfused, s.disposition(requester))
	reply := template.Render(requester) + fmt.Sprintf(" Wall #%s doesn't exist.", index)
	s.emitter.Emit(ctx, reply, template.Style)
}

// SearchWallQuotes emits up to one page of live quotes whose author nick or
// text contains the keyword, case-insensitively. When matches remain past
// the page it emits one summary line with the literal next-page invocation.
func (s *Service) SearchWallQuotes(ctx chat.Context, keyword string, page int) {
	needle := strings.ToLower(keyword)
	toSkip := page * wallPageSize

	s.mu.Lock()
	now := s.clock()
	var lines []string
	suppressed := 0
	for _, quote := range s.wall {
		if quote.Deleted {
			continue
		}
		if !strings.Contains(strings.ToLower(quote.AuthorNick), needle) &&
			!strings.Contains(strings.ToLower(quote.Text), needle) {
			continue
		}
		if toSkip > 0 {
			toSkip--
			continue
		}
		if len(lines) < wallPageSize {
			lines = append(lines, formatWallQuote(quote, now))
		} else {
			suppressed++
		}
	}
	s.mu.Unlock()

	for _, line := range lines {
		chat.Speak(s.emitter, ctx, line)
	}
	if suppressed > 0 {
		hint := fmt.Sprintf("... plus %d more. Use '.wall page %d %s' to see more.", suppressed, page+1, keyword)
		chat.Speak(s.emitter, ctx, hint)
	}
}

// RandomWallQuote emits a uniformly drawn live quote, rejecting deleted
// records within the draw budget. An empty or exhausted wall answers "Nah.".
func (s *Service) RandomWallQuote(ctx chat.Context) {
	s.mu.Lock()
	var line string
	if len(s.wall) > 0 {
		for attempt := 0; attempt < randomDrawBudget; attempt++ {
			quote := s.wall[s.intn(len(s.wall))]
			if quote.Deleted {
				continue
			}
			line = formatWallQuote(quote, s.clock())
			break
		}
	}
	s.mu.Unlock()

	if line == "" {
		chat.Speak(s.emitter, ctx, "Nah.")
		return
	}
	chat.Speak(s.emitter, ctx, line)
}

// DeleteWallQuote flags the quote as deleted. Unknown indices no-op
// silently; persistence happens only on a hit. The record and its index
// survive forever.
func (s *Service) DeleteWallQuote(index string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wall {
		if s.wall[i].Index == index {
			s.wall[i].Deleted = true
			s.persist()
			return
		}
	}
}

// ObliterateWall resets the wall to empty. Index assignment restarts.
func (s *Service) ObliterateWall() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wall = nil
	s.persist()
}

// WallPage returns a copy of one page of live quotes for the ops surface,
// along with the total live count.
func (s *Service) WallPage(page int) ([]WallQuote, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var live []WallQuote
	for _, quote := range s.wall {
		if !quote.Deleted {
			live = append(live, quote)
		}
	}
	total := len(live)
	start := page * wallPageSize
	if start >= total {
		return nil, total
	}
	end := start + wallPageSize
	if end > total {
		end = total
	}
	pageCopy := make([]WallQuote, end-start)
	copy(pageCopy, live[start:end])
	return pageCopy, total
}
