package chat

// Style selects how an outbound line is rendered by the host platform.
type Style string

const (
	// StyleNormal delivers a plain message line.
	StyleNormal Style = "normal"
	// StyleAction delivers a /me style action line.
	StyleAction Style = "action"
)

// Emitter is the single side-effecting boundary through which the bot talks
// back to the chat platform.
type Emitter interface {
	Emit(ctx Context, text string, style Style)
}

// Speak delivers a plain message into the context.
func Speak(emitter Emitter, ctx Context, text string) {
	emitter.Emit(ctx, text, StyleNormal)
}

// Act delivers an action-style message into the context.
func Act(emitter Emitter, ctx Context, text string) {
	emitter.Emit(ctx, text, StyleAction)
}
