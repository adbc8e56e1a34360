// Package middleware contains the cross-cutting update handlers:
// inbound message logging and panic recovery.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/nanacinema/RCFINDER/internal/common"
)

// LogMessage logs an incoming message: user_id, chat_id, username and a
// truncated text preview.
func LogMessage(message *tgbotapi.Message) {
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}

	log.WithFields(log.Fields{
		"user_id":  message.From.ID,
		"chat_id":  message.Chat.ID,
		"username": message.From.UserName,
		"text":     common.Truncate(message.Text, 50),
	}).Debug("Incoming message")
}
