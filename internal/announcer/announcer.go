// Package announcer publishes schedule updates to Discord and answers slash
// commands about the latest schedule.
package announcer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/raysh454/repview/internal/logging"
	"github.com/raysh454/repview/internal/replacements"
	"github.com/raysh454/repview/internal/store"
)

// MessageLimit is Discord's maximum message length in characters.
const MessageLimit = 2000

// Sender is the part of *discordgo.Session the announcer needs.
type Sender interface {
	ChannelMessageSend(channelID string, content string) (*discordgo.Message, error)
}

type Announcer struct {
	sender    Sender
	channelID string
	logger    logging.Logger
}

func NewAnnouncer(sender Sender, channelID string, logger logging.Logger) *Announcer {
	return &Announcer{
		sender:    sender,
		channelID: channelID,
		logger:    logger.With(logging.Field{Key: "component", Value: "announcer"}),
	}
}

// Announce posts the summary of snap, followed by the changed lines, to the
// feed channel. Long messages are sent in several parts.
func (a *Announcer) Announce(ctx context.Context, snap *store.Snapshot, chunks []store.Chunk) error {
	if snap == nil {
		return errors.New("announce: nil snapshot")
	}

	parts := Split(Message(snap.Schedule, chunks), MessageLimit)
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := a.sender.ChannelMessageSend(a.channelID, part); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err)
		}
	}

	a.logger.Info("announced update",
		logging.Field{Key: "snapshot_id", Value: snap.ID},
		logging.Field{Key: "parts", Value: len(parts)})
	return nil
}

// Message is the announcement text for a schedule and the chunks that
// changed since the previous one.
func Message(s *replacements.Schedule, chunks []store.Chunk) string {
	var b strings.Builder
	b.WriteString(replacements.Summary(s))
	if len(chunks) == 0 {
		return b.String()
	}

	b.WriteString("\nИзменения:\n")
	for _, c := range chunks {
		prefix := "+ "
		if c.Type == "removed" {
			prefix = "- "
		}
		for _, line := range strings.Split(strings.Trim(c.Content, "\n"), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Split breaks text into parts of at most limit characters, preferring line
// boundaries. A single line longer than limit is cut.
func Split(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if n > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			n = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		ln := utf8.RuneCountInString(line)
		if n+ln > limit {
			flush()
		}
		for ln > limit {
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			ln -= limit
		}
		cur.WriteString(line)
		n += ln
	}
	flush()
	return parts
}
