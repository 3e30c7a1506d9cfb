package alerts

import (
	"fmt"
	"html"
	"time"

	"itemwatch/pkg/config"

	"github.com/go-resty/resty/v2"
)

// TelegramNotifier pushes alerts to a chat via the Telegram Bot API.
type TelegramNotifier struct {
	client *resty.Client
	token  string
	chatID string
}

func NewTelegramNotifier(cfg config.TelegramConfig) *TelegramNotifier {
	client := resty.New().
		SetBaseURL("https://api.telegram.org").
		SetTimeout(15 * time.Second)
	return &TelegramNotifier{
		client: client,
		token:  cfg.BotToken,
		chatID: cfg.ChatID,
	}
}

func (n *TelegramNotifier) SendTargetAlert(title, url string, current, target float64) error {
	text := fmt.Sprintf(
		"🎯 <b>Target price reached!</b>\n\n%s\n\nCurrent: <b>₹%.2f</b>\nYour target: ₹%.2f\n\n<a href=\"%s\">Buy now</a>",
		html.EscapeString(title), current, target, url,
	)
	return n.sendMessage(text)
}

func (n *TelegramNotifier) SendBackInStockAlert(title, url string, price float64) error {
	text := fmt.Sprintf(
		"📦 <b>Back in stock!</b>\n\n%s\n\nPrice: <b>₹%.2f</b>\n\n<a href=\"%s\">Buy now</a>",
		html.EscapeString(title), price, url,
	)
	return n.sendMessage(text)
}

func (n *TelegramNotifier) SendDailySummary(totalChecked int, closestTitle string, closestPrice, closestGap float64) error {
	text := fmt.Sprintf("📊 <b>Daily summary</b>\n\nChecked %d products today.", totalChecked)
	if closestTitle != "" {
		text += fmt.Sprintf(
			"\n\nClosest to target: %s\nNow ₹%.2f, just ₹%.2f above your target.",
			html.EscapeString(closestTitle), closestPrice, closestGap,
		)
	}
	return n.sendMessage(text)
}

func (n *TelegramNotifier) sendMessage(text string) error {
	res, err := n.client.R().
		SetFormData(map[string]string{
			"chat_id":                  n.chatID,
			"text":                     text,
			"parse_mode":               "HTML",
			"disable_web_page_preview": "true",
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", n.token))
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("telegram API returned %s: %s", res.Status(), res.String())
	}
	return nil
}
