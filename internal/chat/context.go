package chat

import "strings"

// Context identifies where a reply is delivered: an IRC channel when the
// conversation is public, or a nick when it is a private exchange. It is a
// value type on purpose — asynchronous continuations capture their own copy,
// and routing overrides construct a new value instead of mutating a shared
// reference.
type Context struct {
	Channel string
	Network string
}

// WithChannel returns a copy of the context routed to the given channel or nick.
func (c Context) WithChannel(channel string) Context {
	c.Channel = channel
	return c
}

// IsPublicChannel reports whether a delivery target names a public channel
// rather than a private conversation with a single nick.
func IsPublicChannel(channel string) bool {
	return strings.HasPrefix(channel, "#")
}
