package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UI texts.
const (
	menuText       = "Hi! I am an all-purpose bot. Pick one of the options:"
	plainTextReply = "Got your message. Pick an option from the menu or send /menu."

	scheduleUsage   = "Wrong format. Example: /schedule 14:30 | message text"
	unscheduleUsage = "Example: /unschedule 3 (see ids in /scheduled)"
	addnoteUsage    = "Example: /addnote your text"
	imgUsage        = "Example: /img your text"
	searchUsage     = "Example: /search your query"

	storageFailure     = "Something went wrong, please try again later."
	searchUnavailable  = "Search is not available right now."
	barcodeUnavailable = "Barcode reading is not available right now."
	renderUnavailable  = "Image rendering is not available right now."
	photoAck           = "Photo received. Send a barcode photo to have it read."
)

// menuButtons mirrors the bot's feature menu; buttons without a handler
// reply with the not-installed notice.
var menuButtons = []struct {
	label string
	key   string
}{
	{"Aparat Video", "aparat"},
	{"Google Search", "gsearch"},
	{"Barcode Read", "barcode"},
	{"Text to Image", "textimg"},
	{"Weather", "weather"},
	{"Currency/Gold", "money"},
	{"Crypto", "crypto"},
	{"Calendar", "calendar"},
	{"Joke", "joke"},
	{"Translate", "translate"},
	{"Random", "random"},
	{"News", "news"},
	{"Notes", "notes"},
	{"Music Link", "music"},
	{"Settings", "settings"},
}

// callbackPrompts maps installed menu keys to their follow-up prompt.
var callbackPrompts = map[string]string{
	"aparat":  "Send an aparat link (e.g. https://www.aparat.com/v/xxxxx).",
	"gsearch": "Send a query with /search <query>.",
	"barcode": "Send a barcode photo and I will read it.",
	"textimg": "Use /img <text> to turn text into an image.",
	"notes":   "Add a note with /addnote <text>. List yours with /mynotes.",
}

func featureNotInstalled(key string) string {
	return fmt.Sprintf("Button %q pressed. This feature is not installed yet.", key)
}

// menuKeyboard lays the feature buttons out three per row.
func menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, b := range menuButtons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.label, b.key))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
