// Package telegrambot shruggs Telegram messages through the reaction generator.
package telegrambot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
	"github.com/lueurxax/shruggbot/internal/core/reaction"
	"github.com/lueurxax/shruggbot/internal/platform/config"
	"github.com/lueurxax/shruggbot/internal/platform/observability"
	"github.com/lueurxax/shruggbot/internal/platform/ratelimit"
)

// MaxMessageSize is the maximum size of one Telegram message part, in UTF-16 code units.
const MaxMessageSize = 4000

const updateTimeoutSeconds = 60

// maxConcurrentMessages bounds how many messages are handled at once. The
// update loop waits for a free slot when all are busy.
const maxConcurrentMessages = 8

// Command names.
const (
	CmdStart     = "start"
	CmdHelp      = "help"
	CmdShrugg    = "shrugg"
	CmdCorporate = "corporate"
	CmdHoroscope = "horoscope"
	CmdPolitical = "political"

	commandPlainText = "text"
)

// Log field names.
const (
	LogFieldUserID  = "user_id"
	LogFieldChatID  = "chat_id"
	LogFieldCommand = "command"
)

const surfaceTelegram = "telegram"

// Reply texts.
const (
	replyRateLimited    = "Easy there. Even apathy needs a breather. Try again in a minute."
	replyShortCircuited = "ShruggBot short-circuited. Try again later."
	replyUnknownCommand = "Unknown command. Try /help."
)

var commandModes = map[string]reaction.Mode{
	CmdShrugg:    reaction.ModeGeneral,
	CmdCorporate: reaction.ModeCorporate,
	CmdHoroscope: reaction.ModeHoroscope,
	CmdPolitical: reaction.ModePolitical,
}

var commandUsage = map[string]string{
	CmdShrugg:    "Usage: /shrugg <text or link>",
	CmdCorporate: "Usage: /corporate <corporate jargon>",
	CmdHoroscope: "Usage: /horoscope <zodiac sign>",
	CmdPolitical: "Usage: /political <headline>",
}

// Reactor generates reactions.
type Reactor interface {
	Generate(ctx context.Context, req reaction.Request) (reaction.Result, error)
}

// Sender is the part of the Bot API used to reply.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers Telegram messages with reactions.
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	reactor Reactor
	limiter ratelimit.Limiter
	logger  *zerolog.Logger
}

// New connects to the Bot API with TELEGRAM_BOT_TOKEN.
func New(cfg *config.Config, reactor Reactor, limiter ratelimit.Limiter, logger *zerolog.Logger) (*Bot, error) {
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("telegram bot: %w", apperrors.ErrClientDisabled)
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}

	b := NewWithSender(api, reactor, limiter, logger)
	b.api = api

	return b, nil
}

// NewWithSender creates a bot that replies through sender. Run needs a bot
// created by New.
func NewWithSender(sender Sender, reactor Reactor, limiter ratelimit.Limiter, logger *zerolog.Logger) *Bot {
	return &Bot{
		sender:  sender,
		reactor: reactor,
		limiter: limiter,
		logger:  logger,
	}
}

// Run long-polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	if b.api == nil {
		return fmt.Errorf("telegram bot: %w", apperrors.ErrClientDisabled)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.api.Self.UserName).Msg("Telegram bot started")

	err := b.dispatch(ctx, updates)
	if ctx.Err() != nil {
		b.api.StopReceivingUpdates()
	}

	return err
}

// dispatch hands messages from updates to a bounded pool of workers so a
// slow reaction in one chat does not hold up the others. It returns once
// updates is closed or ctx is canceled and every started message is done.
func (b *Bot) dispatch(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	var g errgroup.Group

	g.SetLimit(maxConcurrentMessages)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()

			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}

			if update.Message == nil {
				continue
			}

			msg := update.Message

			g.Go(func() error {
				b.HandleMessage(ctx, msg)

				return nil
			})
		}
	}
}

// HandleMessage routes one incoming message.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}

	if !msg.IsCommand() {
		// Group chats only get reactions on explicit commands.
		if msg.Chat.IsPrivate() && strings.TrimSpace(msg.Text) != "" {
			b.shrugg(ctx, msg, commandPlainText, reaction.ModeGeneral, msg.Text)
		}

		return
	}

	command := strings.ToLower(msg.Command())

	b.logger.Info().Str(LogFieldCommand, command).Int64(LogFieldChatID, msg.Chat.ID).Msg("Handling command")

	switch command {
	case CmdStart, CmdHelp:
		observability.TelegramMessages.WithLabelValues(command).Inc()
		b.reply(msg, helpText())
	case CmdShrugg, CmdCorporate, CmdHoroscope, CmdPolitical:
		b.shrugg(ctx, msg, command, commandModes[command], msg.CommandArguments())
	default:
		b.reply(msg, replyUnknownCommand)
	}
}

func (b *Bot) shrugg(ctx context.Context, msg *tgbotapi.Message, command string, mode reaction.Mode, text string) {
	observability.TelegramMessages.WithLabelValues(command).Inc()

	text = strings.TrimSpace(text)
	if text == "" {
		b.reply(msg, usageFor(command))

		return
	}

	if !b.allow(ctx, msg.Chat.ID) {
		observability.RateLimited.WithLabelValues(surfaceTelegram).Inc()
		b.reply(msg, replyRateLimited)

		return
	}

	result, err := b.reactor.Generate(ctx, reaction.Request{Text: text, Mode: mode})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyText) {
			b.reply(msg, usageFor(command))

			return
		}

		b.logger.Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Str(LogFieldCommand, command).Msg("reaction generation failed")
		b.reply(msg, replyShortCircuited)

		return
	}

	b.reply(msg, reaction.FormatShare(text, result))
}

// allow applies the per-chat quota. Limiter errors let the message through.
func (b *Bot) allow(ctx context.Context, chatID int64) bool {
	if b.limiter == nil {
		return true
	}

	allowed, err := b.limiter.Allow(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		b.logger.Warn().Err(err).Msg("rate limiter unavailable, allowing message")

		return true
	}

	return allowed
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	for i, part := range SplitText(text, MaxMessageSize) {
		reply := tgbotapi.NewMessage(msg.Chat.ID, part)
		reply.DisableWebPagePreview = true

		if i == 0 {
			reply.ReplyToMessageID = msg.MessageID
		}

		if _, err := b.sender.Send(reply); err != nil {
			b.logger.Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to send reply")
		}
	}
}

func usageFor(command string) string {
	if usage, ok := commandUsage[command]; ok {
		return usage
	}

	return commandUsage[CmdShrugg]
}

func helpText() string {
	var sb strings.Builder

	sb.WriteString("¯\\_(ツ)_/¯ ShruggBot, professional shrugger of the internet.\n\n")
	sb.WriteString("Send me any text or link and I will react to it.\n\n")
	sb.WriteString("/shrugg <text or link> - a general reaction\n")
	sb.WriteString("/corporate <jargon> - Corporate Translator\n")
	sb.WriteString("/horoscope <sign> - Sarcastic Astrologer\n")
	sb.WriteString("/political <headline> - Third Party Pundit\n")

	return sb.String()
}
