// Package admin — handlers.go maps the privileged chat commands onto the
// service. Non-admin calls are silently ignored (except /addcredits, which
// answers "Unauthorized"), matching the bot's historical behavior: a
// stranger probing admin commands learns nothing.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/nanacinema/RCFINDER/internal/common"
)

// Handler handles admin commands plus /redeem, which any user may call.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleAddCredits handles /addcredits <user_id> <amount>.
func (h *Handler) HandleAddCredits(ctx context.Context, chatID, userID int64, args []string) {
	if !h.service.IsAdmin(userID) {
		h.sendMessage(chatID, "Unauthorized")
		return
	}

	targetID, amount, ok := parseIDAndAmount(args)
	if !ok {
		h.sendMessage(chatID, "Usage: /addcredits <user_id> <amount>")
		return
	}

	if err := h.service.AddCredits(ctx, targetID, amount); err != nil {
		if errors.Is(err, common.ErrInvalidAmount) {
			h.sendMessage(chatID, "Usage: /addcredits <user_id> <amount>")
			return
		}
		log.WithError(err).Error("Failed to add credits")
		h.sendMessage(chatID, "❌ Failed to add credits")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("Added %d credits to %d", amount, targetID))
}

// HandleBlock handles /block <user_id>.
func (h *Handler) HandleBlock(ctx context.Context, chatID, userID int64, args []string) {
	h.handleSetBlocked(ctx, chatID, userID, args, true)
}

// HandleUnblock handles /unblock <user_id>.
func (h *Handler) HandleUnblock(ctx context.Context, chatID, userID int64, args []string) {
	h.handleSetBlocked(ctx, chatID, userID, args, false)
}

func (h *Handler) handleSetBlocked(ctx context.Context, chatID, userID int64, args []string, blocked bool) {
	if !h.service.IsAdmin(userID) {
		return
	}

	usage := "Usage: /block <user_id>"
	verb := "blocked"
	if !blocked {
		usage = "Usage: /unblock <user_id>"
		verb = "unblocked"
	}

	if len(args) < 1 {
		h.sendMessage(chatID, usage)
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.sendMessage(chatID, usage)
		return
	}

	if err := h.service.SetBlocked(ctx, targetID, blocked); err != nil {
		log.WithError(err).Error("Failed to update blocked flag")
		h.sendMessage(chatID, "❌ Failed to update user")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("User %d %s.", targetID, verb))
}

// HandleBroadcast handles /broadcast <text...>: sequential fan-out to
// every known user with an aggregate sent/failed report.
func (h *Handler) HandleBroadcast(ctx context.Context, chatID, userID int64, args []string) {
	if !h.service.IsAdmin(userID) {
		return
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		h.sendMessage(chatID, "Usage: /broadcast <message>")
		return
	}

	sent, failed, err := h.service.Broadcast(ctx, text, h.sendTo)
	if err != nil {
		log.WithError(err).Error("Broadcast failed")
		h.sendMessage(chatID, "❌ Broadcast failed")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("Sent: %d, Failed: %d", sent, failed))
}

// HandleVoucher handles /voucher <credits>: issues a one-shot top-up code.
func (h *Handler) HandleVoucher(ctx context.Context, chatID, userID int64, args []string) {
	if !h.service.IsAdmin(userID) {
		return
	}

	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /voucher <credits>")
		return
	}
	credits, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || credits <= 0 {
		h.sendMessage(chatID, "Usage: /voucher <credits>")
		return
	}

	code, err := h.service.CreateVoucher(ctx, userID, credits)
	if err != nil {
		log.WithError(err).Error("Failed to create voucher")
		h.sendMessage(chatID, "❌ Failed to create voucher")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf(
		"🎟 Voucher for %d credits:\n%s\n\nRedeemable once via /redeem %s", credits, code, code))
}

// HandleRedeem handles /redeem <code> from any user.
func (h *Handler) HandleRedeem(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Usage: /redeem RC-12-xxxxxxxx")
		return
	}

	credits, err := h.service.Redeem(ctx, userID, args[0])
	if err != nil {
		switch {
		case errors.Is(err, common.ErrVoucherInvalid):
			h.sendMessage(chatID, "❌ Invalid voucher code.")
		case errors.Is(err, common.ErrVoucherUsed):
			h.sendMessage(chatID, "❌ This voucher was already redeemed.")
		default:
			log.WithError(err).Error("Voucher redemption failed")
			h.sendMessage(chatID, "❌ Redemption failed, try again later.")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Voucher redeemed: +%d credits.", credits))
}

// PanelText is the admin panel body shown for the "admin" button.
func (h *Handler) PanelText() string {
	return "⚙️ Admin Panel — commands:\n" +
		"/addcredits <user_id> <amount>\n" +
		"/block <user_id>\n" +
		"/unblock <user_id>\n" +
		"/voucher <credits>\n" +
		"/broadcast <message>"
}

func parseIDAndAmount(args []string) (int64, int64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return id, amount, true
}

func (h *Handler) sendTo(userID int64, text string) error {
	_, err := h.bot.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}
