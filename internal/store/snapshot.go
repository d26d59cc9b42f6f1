package store

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Snapshot wire types. Instants travel as unix seconds so blobs stay
// readable and portable across restarts.

type notePayload struct {
	Sender    string `json:"sender"`
	Recipient string `json:"nick"`
	Text      string `json:"note"`
	CreatedAt int64  `json:"timestamp"`
	Public    bool   `json:"ispublic"`
}

type wallPayload struct {
	Index     string `json:"index"`
	Nick      string `json:"nick"`
	Text      string `json:"quote"`
	CreatedAt int64  `json:"timestamp"`
	Deleted   bool   `json:"deleted"`
}

type greetingPayload struct {
	Nick     string `json:"nick"`
	IsAction bool   `json:"is_action"`
	Message  string `json:"message"`
}

const (
	snapshotFieldNotes     = "notes"
	snapshotFieldWall      = "wall"
	snapshotFieldGreetings = "greetings"
	snapshotFieldLastSeen  = "last_seen"
	snapshotFieldLastFM    = "lastfm_users"
)

// Callers hold s.mu.
func (s *Service) encodeSnapshot() ([]byte, error) {
	notes := make([]notePayload, 0, len(s.notes))
	for _, note := range s.notes {
		notes = append(notes, notePayload{
			Sender:    note.Sender,
			Recipient: note.Recipient,
			Text:      note.Text,
			CreatedAt: note.CreatedAt.Unix(),
			Public:    note.Public,
		})
	}

	wall := make([]wallPayload, 0, len(s.wall))
	for _, quote := range s.wall {
		wall = append(wall, wallPayload{
			Index:     quote.Index,
			Nick:      quote.AuthorNick,
			Text:      quote.Text,
			CreatedAt: quote.CreatedAt.Unix(),
			Deleted:   quote.Deleted,
		})
	}

	greetings := make([]greetingPayload, 0, len(s.greetings))
	for _, greeting := range s.greetings {
		greetings = append(greetings, greetingPayload{
			Nick:     greeting.Nick,
			IsAction: greeting.IsAction,
			Message:  greeting.Message,
		})
	}

	lastSeen := make(map[string]int64, len(s.lastSeen))
	for nick, seenAt := range s.lastSeen {
		lastSeen[nick] = seenAt.Unix()
	}

	return json.Marshal(map[string]interface{}{
		snapshotFieldNotes:     notes,
		snapshotFieldWall:      wall,
		snapshotFieldGreetings: greetings,
		snapshotFieldLastSeen:  lastSeen,
		snapshotFieldLastFM:    s.lastfm,
	})
}

// Snapshot exports the full store state as one blob.
func (s *Service) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encodeSnapshot()
}

// Restore imports a previously exported blob. Extraction is best-effort and
// field-by-field: absent or malformed fields leave the corresponding
// collection unchanged, and a nil or unparseable blob restores nothing.
func (s *Service) Restore(blob []byte) {
	if len(blob) == 0 {
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(blob, &fields); err != nil {
		s.logger.Warn("snapshot blob unreadable, starting fresh", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var notes []notePayload
	if raw, ok := fields[snapshotFieldNotes]; ok && json.Unmarshal(raw, &notes) == nil && len(notes) > 0 {
		s.notes = make([]Note, 0, len(notes))
		for _, note := range notes {
			s.notes = append(s.notes, Note{
				Sender:    note.Sender,
				Recipient: note.Recipient,
				Text:      note.Text,
				CreatedAt: time.Unix(note.CreatedAt, 0),
				Public:    note.Public,
			})
		}
	}

	var wall []wallPayload
	if raw, ok := fields[snapshotFieldWall]; ok && json.Unmarshal(raw, &wall) == nil && len(wall) > 0 {
		s.wall = make([]WallQuote, 0, len(wall))
		for _, quote := range wall {
			s.wall = append(s.wall, WallQuote{
				Index:      quote.Index,
				AuthorNick: quote.Nick,
				Text:       quote.Text,
				CreatedAt:  time.Unix(quote.CreatedAt, 0),
				Deleted:    quote.Deleted,
			})
		}
	}

	var greetings []greetingPayload
	if raw, ok := fields[snapshotFieldGreetings]; ok && json.Unmarshal(raw, &greetings) == nil && len(greetings) > 0 {
		s.greetings = make([]Greeting, 0, len(greetings))
		for _, greeting := range greetings {
			s.greetings = append(s.greetings, Greeting{
				Nick:     greeting.Nick,
				IsAction: greeting.IsAction,
				Message:  greeting.Message,
			})
		}
	}

	var lastSeen map[string]int64
	if raw, ok := fields[snapshotFieldLastSeen]; ok && json.Unmarshal(raw, &lastSeen) == nil {
		for nick, seenAt := range lastSeen {
			s.lastSeen[nick] = time.Unix(seenAt, 0)
		}
	}

	var registrations map[string]string
	if raw, ok := fields[snapshotFieldLastFM]; ok && json.Unmarshal(raw, &registrations) == nil {
		for nick, username := range registrations {
			s.lastfm[nick] = username
		}
	}
}
