package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/depotbot/internal/core"
	"github.com/JonMunkholm/depotbot/internal/portfolio"
	"github.com/bwmarrin/discordgo"
)

// messenger is the part of *discordgo.Session the bot posts through.
type messenger interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Channel is a text channel that receives report pages.
type Channel struct {
	api messenger
	id  string
}

// NewChannel returns a destination for channel id. It does not check that
// the channel exists; see ChannelResolver.
func NewChannel(api messenger, id string) *Channel {
	return &Channel{api: api, id: id}
}

// Send posts page as an embed.
func (c *Channel) Send(ctx context.Context, page portfolio.Page) error {
	if _, err := c.api.ChannelMessageSendEmbed(c.id, Embed(page), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send embed: %w", err)
	}
	return nil
}

// Notify posts a plain message.
func (c *Channel) Notify(ctx context.Context, text string) error {
	if _, err := c.api.ChannelMessageSend(c.id, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (c *Channel) String() string {
	return "channel " + c.id
}

// ChannelResolver looks up the configured report channel before each
// scheduled cycle.
type ChannelResolver struct {
	api messenger
	id  string
}

// NewChannelResolver creates a resolver for channel id.
func NewChannelResolver(api messenger, id string) *ChannelResolver {
	return &ChannelResolver{api: api, id: id}
}

// Resolve returns the channel when it exists and accepts text. Unknown,
// inaccessible and non-text channels wrap core.ErrChannelUnresolved; other
// API failures are returned as they are.
func (r *ChannelResolver) Resolve(ctx context.Context) (core.Destination, error) {
	ch, err := r.api.Channel(r.id, discordgo.WithContext(ctx))
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("channel %s: %w: %v", r.id, core.ErrChannelUnresolved, err)
		}
		return nil, fmt.Errorf("lookup channel %s: %w", r.id, err)
	}
	if ch == nil || !isText(ch.Type) {
		return nil, fmt.Errorf("channel %s is not a text channel: %w", r.id, core.ErrChannelUnresolved)
	}
	return NewChannel(r.api, r.id), nil
}

func isMissing(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}
	if rest.Message != nil && rest.Message.Code == discordgo.ErrCodeUnknownChannel {
		return true
	}
	if rest.Response == nil {
		return false
	}
	switch rest.Response.StatusCode {
	case http.StatusNotFound, http.StatusForbidden:
		return true
	}
	return false
}

func isText(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGroupDM,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeGuildNewsThread:
		return true
	}
	return false
}
