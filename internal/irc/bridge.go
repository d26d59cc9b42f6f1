// Package irc connects the dispatch engine to an IRC network. The bridge
// owns the girc client, forwards channel traffic into the engine, and
// implements the chat emitter on top of the client's command surface.
package irc

import (
	"context"
	"errors"
	"time"

	"github.com/lrstanley/girc"
	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/chat"
)

const reconnectDelay = 30 * time.Second

var errMissingServer = errors.New("irc: server is required")

// MessageHandler consumes inbound chat traffic. The dispatch engine
// satisfies this interface.
type MessageHandler interface {
	HandleMessage(sender, text string, ctx chat.Context)
	HandleJoin(ctx chat.Context, nick string)
}

// BridgeConfig describes an IRC connection. The message handler is bound
// after construction: the dispatch engine emits through the bridge, so the
// two are wired in opposite directions.
type BridgeConfig struct {
	Server   string
	Port     int
	Nick     string
	Channels []string
	Logger   *zap.Logger
}

// Bridge runs one IRC connection and routes its events.
type Bridge struct {
	client   *girc.Client
	network  string
	channels []string
	handler  MessageHandler
	logger   *zap.Logger
}

// NewBridge validates the configuration and prepares the connection.
func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.Server == "" {
		return nil, errMissingServer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := girc.New(girc.Config{
		Server: cfg.Server,
		Port:   cfg.Port,
		Nick:   cfg.Nick,
		User:   cfg.Nick,
		Name:   cfg.Nick,
		SSL:    true,
	})

	bridge := &Bridge{
		client:   client,
		network:  cfg.Server,
		channels: cfg.Channels,
		logger:   logger,
	}

	client.Handlers.Add(girc.CONNECTED, func(c *girc.Client, e girc.Event) {
		bridge.logger.Info("connected to irc", zap.String("network", bridge.network))
		for _, channel := range bridge.channels {
			c.Cmd.Join(channel)
		}
	})
	client.Handlers.Add(girc.PRIVMSG, func(c *girc.Client, e girc.Event) {
		bridge.routeMessage(c.GetNick(), e.Source.Name, e.Params[0], e.Last())
	})
	client.Handlers.Add(girc.JOIN, func(c *girc.Client, e girc.Event) {
		bridge.routeJoin(c.GetNick(), e.Source.Name, e.Params[0])
	})

	return bridge, nil
}

// Bind attaches the inbound message handler. Events arriving before Bind are
// dropped.
func (b *Bridge) Bind(handler MessageHandler) {
	b.handler = handler
}

// routeMessage translates one PRIVMSG into a dispatch call. A message
// addressed to the bot's own nick is a direct message; the engine reroutes
// its replies to the sender.
func (b *Bridge) routeMessage(ownNick, sender, target, text string) {
	if b.handler == nil || sender == "" || sender == ownNick {
		return
	}
	b.handler.HandleMessage(sender, text, chat.Context{Channel: target, Network: b.network})
}

// routeJoin forwards channel joins, skipping the bot's own.
func (b *Bridge) routeJoin(ownNick, nick, channel string) {
	if b.handler == nil || nick == "" || nick == ownNick {
		return
	}
	b.handler.HandleJoin(chat.Context{Channel: channel, Network: b.network}, nick)
}

// Emit implements chat.Emitter on the live connection.
func (b *Bridge) Emit(ctx chat.Context, text string, style chat.Style) {
	switch style {
	case chat.StyleAction:
		b.client.Cmd.Action(ctx.Channel, text)
	default:
		b.client.Cmd.Message(ctx.Channel, text)
	}
}

// Run connects and keeps reconnecting until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		err := b.client.Connect()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warn("irc connection lost, reconnecting",
			zap.String("network", b.network),
			zap.Duration("delay", reconnectDelay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// Close tears down the connection, unblocking Run.
func (b *Bridge) Close() {
	b.client.Close()
}
