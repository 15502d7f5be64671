package announcer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/raysh454/repview/internal/logging"
	"github.com/raysh454/repview/internal/replacements"
	"github.com/raysh454/repview/internal/store"
)

const (
	CommandGroups   = "groups"
	CommandGroup    = "group"
	CommandTeachers = "teachers"
	CommandTeacher  = "teacher"
)

const noData = "Данные о заменах отсутствуют"

// ScheduleSource yields the most recent stored snapshot.
type ScheduleSource interface {
	Latest(ctx context.Context) (*store.Snapshot, error)
}

// Bot owns the Discord session: it announces updates and serves slash
// commands.
type Bot struct {
	cfg        Config
	session    *discordgo.Session
	source     ScheduleSource
	logger     logging.Logger
	announcer  *Announcer
	registered []*discordgo.ApplicationCommand
}

func NewBot(cfg Config, source ScheduleSource, logger logging.Logger) (*Bot, error) {
	if !cfg.Enabled() {
		return nil, errors.New("discord token is not configured")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	logger = logger.With(logging.Field{Key: "component", Value: "discord"})
	return &Bot{
		cfg:       cfg,
		session:   session,
		source:    source,
		logger:    logger,
		announcer: NewAnnouncer(session, cfg.ChannelID, logger),
	}, nil
}

func (b *Bot) Announcer() *Announcer { return b.announcer }

// Open connects to Discord and registers the slash commands.
func (b *Bot) Open() error {
	b.session.AddHandler(b.onInteraction)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}

	for _, cmd := range Commands() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create %q command: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	b.logger.Info("discord bot ready", logging.Field{Key: "commands", Value: len(b.registered)})
	return nil
}

// Close removes the registered commands and disconnects.
func (b *Bot) Close() error {
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.cfg.GuildID, cmd.ID); err != nil {
			b.logger.Warn("cannot delete command",
				logging.Field{Key: "command", Value: cmd.Name},
				logging.Field{Key: "error", Value: err})
		}
	}
	b.registered = nil
	return b.session.Close()
}

// Commands are the slash commands the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	minLen := 1
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandGroups,
			Description: "Список групп, у которых есть замены.",
		},
		{
			Name:        CommandGroup,
			Description: "Замены для группы.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "number",
					Description: "Номер группы.",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
					MinLength:   &minLen,
					MaxLength:   16,
				},
			},
		},
		{
			Name:        CommandTeachers,
			Description: "Список преподавателей, у которых есть замены.",
		},
		{
			Name:        CommandTeacher,
			Description: "Замены для преподавателя.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Description: "Фамилия и инициалы преподавателя.",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
					MinLength:   &minLen,
					MaxLength:   255,
				},
			},
		},
	}
}

// Respond computes the reply to a command against schedule s.
func Respond(s *replacements.Schedule, command, arg string) string {
	arg = strings.TrimSpace(arg)
	switch command {
	case CommandGroups:
		if s.Empty() {
			return noData
		}
		return "👥 Группы с заменами: " + strings.Join(replacements.Groups(s), ", ")
	case CommandGroup:
		return replacements.GroupText(s, arg)
	case CommandTeachers:
		if s.Empty() {
			return noData
		}
		return "👨‍🏫 Преподаватели с заменами:\n" + strings.Join(replacements.Teachers(s), "\n")
	case CommandTeacher:
		return replacements.TeacherText(s, arg)
	default:
		return "Неизвестная команда"
	}
}

// Reply loads the latest schedule and answers command. The result is
// already split to message size.
func (b *Bot) Reply(ctx context.Context, command, arg string) []string {
	snap, err := b.source.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return []string{noData}
	}
	if err != nil {
		b.logger.Error("loading latest snapshot", logging.Field{Key: "error", Value: err})
		return []string{"Ошибка получения данных"}
	}
	return Split(Respond(snap.Schedule, command, arg), MessageLimit)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	var arg string
	if len(data.Options) > 0 {
		arg = data.Options[0].StringValue()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	parts := b.Reply(ctx, data.Name, arg)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: parts[0]},
	})
	if err != nil {
		b.logger.Warn("interaction response failed",
			logging.Field{Key: "command", Value: data.Name},
			logging.Field{Key: "error", Value: err})
		return
	}
	for _, part := range parts[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: part}); err != nil {
			b.logger.Warn("followup failed", logging.Field{Key: "error", Value: err})
			return
		}
	}
}
