// handlers.go handles /search and the two-step interactive flow where the
// "search" button arms a per-conversation flag and the next free-text
// message is taken as the vehicle number.
package lookup

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/nanacinema/RCFINDER/internal/common"
)

// How long an armed "send me the vehicle number" state stays valid.
const awaitTTL = 5 * time.Minute

// Handler wires the lookup flow to Telegram.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI

	mu       sync.Mutex
	awaiting map[int64]time.Time // user_id → armed-at
}

func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:  service,
		bot:      bot,
		awaiting: make(map[int64]time.Time),
	}
}

// HandleSearchCommand handles /search <vehicle>.
func (h *Handler) HandleSearchCommand(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Usage: /search KL70C1679")
		return
	}
	h.runLookup(ctx, chatID, userID, args[0])
}

// StartAwaiting arms the conversation: the next free-text message from
// this user is consumed as a vehicle number.
func (h *Handler) StartAwaiting(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.awaiting[userID] = time.Now()
}

// HandleAwaitedText consumes a free-text message when the conversation is
// in the awaiting-vehicle state. Returns false when the message is not
// for this handler. One message only: the flag clears before the lookup.
func (h *Handler) HandleAwaitedText(ctx context.Context, chatID, userID int64, text string) bool {
	h.mu.Lock()
	armedAt, ok := h.awaiting[userID]
	if ok {
		delete(h.awaiting, userID)
	}
	h.mu.Unlock()

	if !ok || time.Since(armedAt) > awaitTTL {
		return false
	}

	h.runLookup(ctx, chatID, userID, text)
	return true
}

func (h *Handler) runLookup(ctx context.Context, chatID, userID int64, raw string) {
	vehicle := common.NormalizeVehicle(raw)
	if vehicle == "" {
		h.sendMessage(chatID, "Usage: /search KL70C1679")
		return
	}

	reply, err := h.service.Lookup(ctx, userID, vehicle, func() {
		h.sendMessage(chatID, "⏳ Fetching vehicle data...")
	})
	if err != nil {
		var cooldown *CooldownError
		switch {
		case errors.As(err, &cooldown):
			h.sendMessage(chatID, "⏳ Please wait "+common.FormatWait(cooldown.RetryAfter)+" before next lookup.")
		case errors.Is(err, common.ErrBlocked):
			h.sendMessage(chatID, "⛔ You are blocked from using this bot.")
		case errors.Is(err, common.ErrNoCredits):
			h.sendMessage(chatID, "❌ No credits. Contact admin to buy credits or redeem a voucher.")
		default:
			log.WithError(err).WithField("user_id", userID).Error("Lookup failed")
			h.sendMessage(chatID, "❌ Lookup failed, try again later.")
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, reply)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.bot.Send(msg); err != nil {
		// Markdown can choke on payload contents; retry without formatting.
		h.sendMessage(chatID, reply)
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}
