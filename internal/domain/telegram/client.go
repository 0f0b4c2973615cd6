package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending operational alert messages via
// a Telegram bot. This helps in decoupling the scheduler from the
// specific bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
