package store

import "time"

// Note is a message left for a nick, delivered the next time that nick
// speaks in a channel the bot listens to. Delivered notes are removed.
type Note struct {
	Sender    string
	Recipient string
	Text      string
	CreatedAt time.Time
	Public    bool
}

// WallQuote is one entry on the quote wall. Indices are decimal strings
// assigned in creation order and never reused; deletion is a terminal flag,
// the record itself is kept forever.
type WallQuote struct {
	Index      string
	AuthorNick string
	Text       string
	CreatedAt  time.Time
	Deleted    bool
}

// Greeting fires when its nick joins a channel. At most one greeting exists
// per nick.
type Greeting struct {
	Nick     string
	IsAction bool
	Message  string
}

// Stats summarizes the store for the ops surface.
type Stats struct {
	PendingNotes  int `json:"pending_notes"`
	WallTotal     int `json:"wall_total"`
	WallLive      int `json:"wall_live"`
	Greetings     int `json:"greetings"`
	TrackedNicks  int `json:"tracked_nicks"`
	Registrations int `json:"lastfm_registrations"`
}
