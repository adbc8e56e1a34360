// Package bot contains the main bot module: the polling loop, command
// routing and the inline-keyboard callbacks.
package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/nanacinema/RCFINDER/internal/bot/middleware"
	"github.com/nanacinema/RCFINDER/internal/common"
	"github.com/nanacinema/RCFINDER/internal/config"
	"github.com/nanacinema/RCFINDER/internal/features/accounts"
	"github.com/nanacinema/RCFINDER/internal/features/admin"
	"github.com/nanacinema/RCFINDER/internal/features/lookup"
)

// Stack excerpts forwarded to admins are capped at this many characters.
const maxTraceChars = 3000

// Bot ties all components together.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	accountService *accounts.Service
	lookupHandler  *lookup.Handler
	adminService   *admin.Service
	adminHandler   *admin.Handler

	parser *CommandParser

	// bounds the number of updates processed in parallel
	inflight chan struct{}
}

// New creates the bot with all of its dependencies.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	accountService *accounts.Service,
	lookupHandler *lookup.Handler,
	adminService *admin.Service,
	adminHandler *admin.Handler,
) *Bot {
	maxInflight := cfg.BotMaxInflight
	if maxInflight <= 0 {
		maxInflight = 64
	}

	return &Bot{
		api:            api,
		cfg:            cfg,
		accountService: accountService,
		lookupHandler:  lookupHandler,
		adminService:   adminService,
		adminHandler:   adminHandler,
		parser:         NewCommandParser(),
		inflight:       make(chan struct{}, maxInflight),
	}
}

// Start runs the long-polling loop until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Bot stopping (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Updates channel closed, bot stopped")
				return
			}

			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate processes one Telegram update. A panic anywhere below is
// recovered here, logged, and reported to the admins with a truncated
// stack so one bad update never takes the loop down.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.Recover(func(description string) {
		b.NotifyAdmins("⚠️ Bot error:\n" + common.Truncate(description, maxTraceChars))
	})

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}

	message := update.Message
	middleware.LogMessage(message)

	chatID := message.Chat.ID
	userID := message.From.ID

	// Lazy row creation on any interaction.
	if err := b.accountService.Ensure(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Ensure account failed")
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if isCommand {
		b.routeCommand(ctx, chatID, userID, cmd, args)
		return
	}

	// Free text: the awaiting-vehicle state consumes it, anything else
	// gets the generic help reply.
	if b.lookupHandler.HandleAwaitedText(ctx, chatID, userID, message.Text) {
		return
	}
	b.sendMessage(chatID, "Send /start to open the menu or /search <VEHICLE_NO>")
}

// routeCommand dispatches a parsed command. Commands are case-sensitive;
// unknown commands are ignored.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":     cmd,
		"args":    args,
		"user_id": userID,
	}).Debug("Routing command")

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID, userID)

	case "search":
		b.lookupHandler.HandleSearchCommand(ctx, chatID, userID, args)

	case "balance":
		b.handleBalance(ctx, chatID, userID)

	case "redeem":
		b.adminHandler.HandleRedeem(ctx, chatID, userID, args)

	case "addcredits":
		b.adminHandler.HandleAddCredits(ctx, chatID, userID, args)

	case "block":
		b.adminHandler.HandleBlock(ctx, chatID, userID, args)

	case "unblock":
		b.adminHandler.HandleUnblock(ctx, chatID, userID, args)

	case "broadcast":
		b.adminHandler.HandleBroadcast(ctx, chatID, userID, args)

	case "voucher":
		b.adminHandler.HandleVoucher(ctx, chatID, userID, args)
	}
}

// handleStart replies with the welcome text and the inline menu. Allow-list
// admins get their stored access tier bumped to "admin" here.
func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) {
	if b.adminService.IsAdmin(userID) {
		if err := b.accountService.EnsureAdmin(ctx, userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("EnsureAdmin failed")
		}
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("🔍 Search Vehicle", "search")},
		{tgbotapi.NewInlineKeyboardButtonData("💰 Buy Credits", "buy")},
		{tgbotapi.NewInlineKeyboardButtonData("💳 My Credits", "credits")},
	}
	if b.adminService.IsAdmin(userID) {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Admin Panel", "admin"),
		})
	}

	msg := tgbotapi.NewMessage(chatID,
		"👋 Welcome! Use the buttons below or /search <VEHICLE_NO>.\nExample: /search KL70C1679")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to send welcome")
	}
}

// handleBalance replies with credits, blocked flag and access tier.
func (b *Bot) handleBalance(ctx context.Context, chatID, userID int64) {
	info, err := b.accountService.Get(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to read balance")
		b.sendMessage(chatID, "❌ Failed to read your balance")
		return
	}
	b.sendMessage(chatID, balanceText(info))
}

// handleCallback routes inline-keyboard button presses.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil || q.Message == nil {
		return
	}

	// Acknowledge so the client stops the spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.WithError(err).Debug("Callback ack failed")
	}

	chatID := q.Message.Chat.ID
	userID := q.From.ID

	if err := b.accountService.Ensure(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Ensure account failed")
	}

	switch q.Data {
	case "search":
		b.lookupHandler.StartAwaiting(userID)
		b.editMessage(chatID, q.Message.MessageID,
			"Send vehicle number (example: KL70C1679) — one message only.")

	case "buy":
		var sb strings.Builder
		sb.WriteString("To buy credits, contact an admin or redeem a voucher with /redeem <code>.\nAdmins:\n")
		for _, id := range b.adminService.AdminIDs() {
			sb.WriteString("- ")
			sb.WriteString(strconv.FormatInt(id, 10))
			sb.WriteString("\n")
		}
		b.editMessage(chatID, q.Message.MessageID, sb.String())

	case "credits":
		info, err := b.accountService.Get(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Failed to read balance")
			return
		}
		b.editMessage(chatID, q.Message.MessageID, balanceText(info))

	case "admin":
		if b.adminService.IsAdmin(userID) {
			b.editMessage(chatID, q.Message.MessageID, b.adminHandler.PanelText())
		}
	}
}

// NotifyAdmins sends text to every configured admin, best effort.
func (b *Bot) NotifyAdmins(text string) {
	for _, id := range b.adminService.AdminIDs() {
		b.SendMessageToUser(id, text)
	}
}

// SendMessageToUser sends a direct message; delivery failure is logged at
// debug level only (the recipient may have blocked the bot).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Failed to send direct message")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to edit message")
	}
}

func balanceText(info accounts.Info) string {
	blocked := "false"
	if info.Blocked {
		blocked = "true"
	}
	return "💳 Credits: " + strconv.FormatInt(info.Credits, 10) + "\nBlocked: " + blocked + "\nAccess: " + info.Access
}
