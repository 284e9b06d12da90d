package discord

import (
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/depotbot/internal/portfolio"
	"github.com/bwmarrin/discordgo"
)

// Embed limits enforced by the API.
const (
	maxTitleLen      = 256
	maxFieldNameLen  = 256
	maxFieldValueLen = 1024
	maxFooterLen     = 2048
)

// Embed converts a rendered page into a chat embed. Every record becomes
// one inline field; the total goes in the description.
func Embed(page portfolio.Page) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(page.Fields))
	for _, f := range page.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   truncate(f.Name, maxFieldNameLen),
			Value:  truncate(f.Line(), maxFieldValueLen),
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       truncate(page.Title, maxTitleLen),
		Description: "**Gesamtwert:** " + page.TotalText,
		Color:       page.Color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: truncate(page.Footer(), maxFooterLen)},
		Timestamp:   page.GeneratedAt.Format(time.RFC3339),
	}
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
