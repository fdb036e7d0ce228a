/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

// EventType names a one-shot notification. Clients learn the game state
// from snapshots; events only drive toasts and flashes.
type EventType string

const (
	EventPlayerJoined       EventType = "player_joined"
	EventPlayerLeft         EventType = "player_left"
	EventHostChanged        EventType = "host_changed"
	EventTurnStarted        EventType = "turn_started"
	EventGuess              EventType = "guess"
	EventCardResolved       EventType = "card_resolved"
	EventReviewStarted      EventType = "review_started"
	EventReviewItemResolved EventType = "review_item_resolved"
	EventReviewEnded        EventType = "review_ended"
	EventGameOver           EventType = "game_over"
	EventGameReset          EventType = "game_reset"
)

// Event is delivered to every connected client.
type Event struct {
	Type       EventType     `json:"event"`
	PlayerID   string        `json:"playerId,omitempty"`
	PlayerName string        `json:"playerName,omitempty"`
	Text       string        `json:"text,omitempty"`
	Word       string        `json:"word,omitempty"`
	Result     EntryKind     `json:"result,omitempty"`
	Outcome    ReviewOutcome `json:"outcome,omitempty"`
	Round      int           `json:"round,omitempty"`
	Reason     string        `json:"reason,omitempty"`
}

// Notifier receives events after the transition that produced them has
// been committed.
type Notifier interface {
	Notify(events []Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(events []Event)

func (f NotifierFunc) Notify(events []Event) {
	f(events)
}
