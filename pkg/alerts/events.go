// Package alerts turns new observations into classified change events and
// delivers them over the configured channels.
package alerts

import (
	"itemwatch/pkg/models"
	"itemwatch/pkg/storage"
)

type Event string

const (
	PriceDrop     Event = "price_drop"
	Restock       Event = "restock"
	TargetReached Event = "target_reached"
)

// Detect classifies a new observation against the previous record and the
// target threshold. Pure: no I/O, no clock.
//
// On the very first observation (prev == nil) only TargetReached can fire —
// there is nothing to compare a drop or restock against.
func Detect(obs *models.Product, prev *storage.PriceRecord, target float64) []Event {
	var events []Event

	// Strict: an unchanged price is not a drop.
	if prev != nil && obs.Price < prev.Price {
		events = append(events, PriceDrop)
	}

	if prev != nil && !prev.InStock && obs.InStock {
		events = append(events, Restock)
	}

	if target > 0 && obs.Price <= target {
		events = append(events, TargetReached)
	}

	return events
}
