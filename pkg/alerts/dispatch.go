package alerts

import (
	"itemwatch/pkg/models"
	"itemwatch/pkg/storage"
)

// EmailSender is the rich channel: full pricing context, sent for changes
// worth reading later. It deliberately does not fire on TargetReached
// alone — a target sitting reached every cycle would bury the inbox.
type EmailSender interface {
	SendPriceAlert(title, url string, current, previous, target, lowest float64) error
	SendBackInStockAlert(title, url string, price float64) error
}

// Messenger is the terse channel: short pushes for things worth acting on
// right now. SendTargetAlert is called on every check while the price stays
// at or under target — re-pinging is the point, so no dedup here.
type Messenger interface {
	SendTargetAlert(title, url string, current, target float64) error
	SendBackInStockAlert(title, url string, price float64) error
	SendDailySummary(totalChecked int, closestTitle string, closestPrice, closestGap float64) error
}

// Alert carries everything a channel might want to say about one check.
type Alert struct {
	Title    string
	URL      string
	Current  float64
	Previous *storage.PriceRecord
	Target   float64 // 0 when unset
	Lowest   float64
}

// Dispatcher fans classified events out to the channels. Nil channels are
// simply skipped; a send failure stops dispatch and propagates — the batch
// runner owns the catch, and there are no retries.
type Dispatcher struct {
	Email EmailSender
	Chat  Messenger
}

func (d *Dispatcher) Dispatch(events []Event, a Alert) error {
	for _, event := range events {
		switch event {
		case PriceDrop:
			if d.Email != nil && a.Previous != nil {
				err := d.Email.SendPriceAlert(a.Title, a.URL, a.Current, a.Previous.Price, a.Target, a.Lowest)
				if err != nil {
					return &models.NotificationError{Channel: "email", Err: err}
				}
			}
		case Restock:
			if d.Email != nil {
				if err := d.Email.SendBackInStockAlert(a.Title, a.URL, a.Current); err != nil {
					return &models.NotificationError{Channel: "email", Err: err}
				}
			}
			if d.Chat != nil {
				if err := d.Chat.SendBackInStockAlert(a.Title, a.URL, a.Current); err != nil {
					return &models.NotificationError{Channel: "chat", Err: err}
				}
			}
		case TargetReached:
			if d.Chat != nil {
				if err := d.Chat.SendTargetAlert(a.Title, a.URL, a.Current, a.Target); err != nil {
					return &models.NotificationError{Channel: "chat", Err: err}
				}
			}
		}
	}
	return nil
}

func (d *Dispatcher) HasChat() bool {
	return d != nil && d.Chat != nil
}

func (d *Dispatcher) SendDailySummary(totalChecked int, closestTitle string, closestPrice, closestGap float64) error {
	if !d.HasChat() {
		return nil
	}
	if err := d.Chat.SendDailySummary(totalChecked, closestTitle, closestPrice, closestGap); err != nil {
		return &models.NotificationError{Channel: "chat", Err: err}
	}
	return nil
}
