package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Skufu/sickness-predictor/internal/audit"
	"github.com/Skufu/sickness-predictor/internal/symptom"
)

const (
	welcomeText = "Hi! Send /predict followed by your symptoms, for example:\n" +
		"/predict I have a persistent cough, fever, and body aches.\n\n" +
		"Anything else you write goes to the advice assistant."
	emptySymptomsText = "Please enter some symptoms to get a prediction."
)

// Predictor scores free-text symptoms.
type Predictor interface {
	Predict(symptoms string) (*symptom.Result, error)
}

// Responder answers general chat messages.
type Responder interface {
	Respond(utterance string) string
}

// Bot serves predictions and advice over Telegram.
type Bot struct {
	api       *tgbotapi.BotAPI
	predictor Predictor
	responder Responder
	trail     *audit.Trail
	logger    *zap.Logger
}

// NewBot authorizes against the Bot API. An empty token disables the bot and
// returns nil, nil.
func NewBot(token string, predictor Predictor, responder Responder, trail *audit.Trail, logger *zap.Logger) (*Bot, error) {
	if token == "" {
		logger.Info("Telegram bot is disabled (TELEGRAM_BOT_TOKEN is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return &Bot{
		api:       botAPI,
		predictor: predictor,
		responder: responder,
		trail:     trail,
		logger:    logger,
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b == nil {
		return nil
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	reply := b.reply(ctx, msg.Text)

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("Failed to send Telegram message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err))
	}
}

// reply maps one incoming text to the bot's answer.
func (b *Bot) reply(ctx context.Context, text string) string {
	command, args := splitCommand(text)

	switch command {
	case "start", "help":
		return welcomeText
	case "predict":
		result, err := b.predictor.Predict(args)
		if errors.Is(err, symptom.ErrEmptyInput) {
			return emptySymptomsText
		}
		if err != nil {
			b.logger.Error("Prediction failed", zap.String("source", "telegram"), zap.Error(err))
			return fmt.Sprintf("An error occurred during prediction: %v", err)
		}
		b.trail.Save(ctx, "telegram", args, result)
		return result.Text()
	default:
		return b.responder.Respond(text)
	}
}

// splitCommand parses "/name@bot rest of text" into ("name", "rest of text").
// The command ends at the first whitespace, newlines included.
// Plain text yields an empty command.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	head, rest := text[1:], ""
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, rest = head[:i], head[i:]
	}
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest)
}
