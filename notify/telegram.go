// Package notify tells a human reviewer when a run is ready.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"robojobs/types"
)

// Notifier delivers a review message for a finished run
type Notifier interface {
	NotifyReview(ctx context.Context, r Review) error
}

// Nop drops notifications
type Nop struct{}

func (Nop) NotifyReview(context.Context, Review) error { return nil }

// Review is what a reviewer needs to decide whether to publish
type Review struct {
	ProjectID  string
	Title      string
	VideoPath  string
	Duration   float64
	Compliance types.ComplianceReport
}

// Sender is the part of tgbotapi.BotAPI used here
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    Sender
	chatID int64
}

// NewTelegram authenticates the bot token against the Bot API
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Printf("🤖 Telegram notifications via @%s", bot.Self.UserName)
	return NewTelegramWith(bot, chatID), nil
}

func NewTelegramWith(api Sender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

func (t *Telegram) NotifyReview(ctx context.Context, r Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatReview(r))
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send review notification: %w", err)
	}
	return nil
}

// FormatReview renders the plain-text notification body
func FormatReview(r Review) string {
	var b strings.Builder

	status := "✅ PASSED"
	if !r.Compliance.Passed {
		status = "❌ NEEDS REVIEW"
	}

	fmt.Fprintf(&b, "🎬 %s is ready for review\n\n", r.ProjectID)
	if r.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", r.Title)
	}
	if r.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %d:%02d\n", int(r.Duration)/60, int(r.Duration)%60)
	}
	if r.VideoPath != "" {
		fmt.Fprintf(&b, "File: %s\n", r.VideoPath)
	}

	fmt.Fprintf(&b, "\nCompliance: %s (score %d/100)\n", status, r.Compliance.Score)
	fmt.Fprintf(&b, "Visuals: %s · Originality: %s\n", r.Compliance.VisualSafety, r.Compliance.Originality)

	if len(r.Compliance.Issues) > 0 {
		b.WriteString("\nIssues:\n")
		for _, issue := range r.Compliance.Issues {
			fmt.Fprintf(&b, "• %s\n", issue)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
