// Package discord connects the report pipeline to a Discord guild.
//
// The bot owns one gateway session. When the session becomes ready it
// starts the report scheduler, and it answers the report command in any
// channel it can read. Ready fires again after every reconnect, which is
// why the scheduler's Start only acts once.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JonMunkholm/depotbot/internal/core"
	"github.com/JonMunkholm/depotbot/internal/logging"
	"github.com/bwmarrin/discordgo"
)

// Starter is started once the gateway is ready.
type Starter interface {
	Start(ctx context.Context) error
}

// Commander answers the report command.
type Commander interface {
	Handle(ctx context.Context, dest core.Destination) core.Result
}

// Bot wraps a gateway session.
type Bot struct {
	session *discordgo.Session
	api     messenger

	mu        sync.Mutex
	ctx       context.Context
	starter   Starter
	commander Commander
	trigger   string
	removers  []func()
}

// Option configures a Bot.
type Option func(*Bot)

// WithHTTPClient sets the HTTP client used for REST calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(b *Bot) {
		b.session.Client = hc
	}
}

// New creates a bot for token. The gateway is not contacted until Open.
func New(token string, opts ...Option) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session: session,
		api:     session,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Resolver returns a resolver for channel id backed by this bot's session.
func (b *Bot) Resolver(channelID string) *ChannelResolver {
	return NewChannelResolver(b.api, channelID)
}

// OnReady registers s to be started when the gateway is ready.
func (b *Bot) OnReady(s Starter) {
	b.mu.Lock()
	b.starter = s
	b.mu.Unlock()
}

// OnCommand registers c to answer messages starting with trigger, for
// example "!depot". Matching ignores case.
func (b *Bot) OnCommand(trigger string, c Commander) {
	b.mu.Lock()
	b.trigger = trigger
	b.commander = c
	b.mu.Unlock()
}

// Open connects to the gateway. ctx bounds the scheduler and every command
// started from this session.
func (b *Bot) Open(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.removers = append(b.removers,
		b.session.AddHandler(b.onReady),
		b.session.AddHandler(b.onMessage),
	)
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

// Close removes the handlers and closes the gateway connection.
func (b *Bot) Close() error {
	b.mu.Lock()
	for _, remove := range b.removers {
		remove()
	}
	b.removers = nil
	b.mu.Unlock()

	return b.session.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.mu.Lock()
	ctx, starter := b.ctx, b.starter
	b.mu.Unlock()

	logger := logging.FromContext(ctx)
	if r != nil && r.User != nil {
		logger.Info("bot online", "user", r.User.Username, "guilds", len(r.Guilds))
	}

	if starter == nil {
		return
	}
	if err := starter.Start(ctx); err != nil && !errors.Is(err, core.ErrAlreadyStarted) {
		logger.Error("failed to start report scheduler", "error", err)
	}
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if s != nil && s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	b.mu.Lock()
	ctx, commander, trigger := b.ctx, b.commander, b.trigger
	b.mu.Unlock()

	if commander == nil || !MatchCommand(m.Content, trigger) {
		return
	}

	ctx = core.WithRequester(ctx, m.Author.Username)
	logging.FromContext(ctx).Debug("report command received", "channel", m.ChannelID, "user", m.Author.Username)
	commander.Handle(ctx, NewChannel(b.api, m.ChannelID))
}

// MatchCommand reports whether content invokes trigger: the first word must
// equal trigger, ignoring case. Arguments after it are allowed and ignored.
func MatchCommand(content, trigger string) bool {
	if trigger == "" {
		return false
	}
	fields := strings.Fields(content)
	return len(fields) > 0 && strings.EqualFold(fields[0], trigger)
}
