/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"errors"
	"fmt"
)

// Phase is the stage of the shared game.
type Phase string

const (
	PhaseLobby  Phase = "lobby"
	PhaseTurn   Phase = "turn"
	PhaseReview Phase = "review"
	PhasePodium Phase = "podium"
)

const (
	MinPlayers = 3

	GuesserPoints = 4
	GiverPoints   = 1

	MaxNameLength = 24
)

var (
	ErrEmptyName        = errors.New("name must not be empty")
	ErrNameTooLong      = fmt.Errorf("name must be at most %d characters", MaxNameLength)
	ErrNameTaken        = errors.New("that name is already taken")
	ErrAlreadyJoined    = errors.New("already joined")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrWrongPhase       = errors.New("action not allowed right now")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = fmt.Errorf("at least %d players are needed", MinPlayers)
	ErrNotGiver         = errors.New("only the current giver can do that")
	ErrIsGiver          = errors.New("the giver cannot do that")
	ErrCardSolved       = errors.New("this card was already guessed")
	ErrAlreadyReported  = errors.New("already reported")
	ErrTimeUp           = errors.New("time is up")
	ErrEmptyGuess       = errors.New("guess must not be empty")
	ErrNoCardInPlay     = errors.New("no card in play")
	ErrNothingToReview  = errors.New("nothing to review")
	ErrReportOwnReview  = errors.New("cannot report your own card")
)

// Player is a joined participant.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"isHost"`
}

// EntryKind tags a GuessLogEntry.
type EntryKind string

const (
	EntryGuess       EntryKind = "guess"
	EntrySuccess     EntryKind = "success"
	EntryInvalidated EntryKind = "invalidated"
	EntrySkipped     EntryKind = "skipped"
)

// GuessLogEntry is one line of the per-turn log.
type GuessLogEntry struct {
	Kind       EntryKind `json:"kind"`
	PlayerName string    `json:"playerName,omitempty"`
	Guess      string    `json:"guess,omitempty"`
	Word       string    `json:"word,omitempty"`
}

// Text renders the entry for display.
func (e GuessLogEntry) Text() string {
	switch e.Kind {
	case EntryGuess:
		return e.PlayerName + ": " + e.Guess
	case EntrySuccess:
		return fmt.Sprintf("%s guessed %q!", e.PlayerName, e.Word)
	case EntryInvalidated:
		return fmt.Sprintf("%q was reported and thrown out.", e.Word)
	case EntrySkipped:
		return fmt.Sprintf("%q was skipped.", e.Word)
	default:
		return ""
	}
}

// Success is a card guessed during a turn, waiting for review.
type Success struct {
	Card      Card   `json:"card"`
	GuesserID string `json:"guesserId"`
	GiverID   string `json:"giverId"`
}

// ReviewOutcome is the verdict on a reviewed card.
type ReviewOutcome string

const (
	OutcomeValidated   ReviewOutcome = "validated"
	OutcomeInvalidated ReviewOutcome = "invalidated"
)

// session is the single mutable aggregate. It is only touched by the
// Controller while holding its lock.
type session struct {
	phase Phase

	players map[string]*Player
	order   []string

	turnOrder []string
	turnIndex int
	round     int
	maxRounds int

	cards         []Card
	used          map[int]bool
	deckExhausted bool

	currentCard         *Card
	currentGiverID      string
	timeLeft            int
	wordGuessedThisCard bool

	guessLog      []GuessLogEntry
	turnSuccesses []Success

	liveReports   map[string]bool
	reviewReports map[string]bool

	currentReview *Success
	reviewOutcome ReviewOutcome
}

func newSession(cards []Card, maxRounds int) *session {
	return &session{
		phase:         PhaseLobby,
		players:       make(map[string]*Player),
		maxRounds:     maxRounds,
		cards:         cards,
		used:          make(map[int]bool),
		liveReports:   make(map[string]bool),
		reviewReports: make(map[string]bool),
	}
}

func (s *session) inGame() bool {
	return s.phase == PhaseTurn || s.phase == PhaseReview
}

func (s *session) host() *Player {
	for _, id := range s.order {
		if p := s.players[id]; p.IsHost {
			return p
		}
	}

	return nil
}

func (s *session) removePlayer(id string) {
	delete(s.players, id)
	delete(s.liveReports, id)
	delete(s.reviewReports, id)

	dst := s.order[:0]
	for _, pid := range s.order {
		if pid != id {
			dst = append(dst, pid)
		}
	}
	s.order = dst
}

func (s *session) unusedIndices() []int {
	out := make([]int, 0, len(s.cards)-len(s.used))
	for i := range s.cards {
		if !s.used[i] {
			out = append(out, i)
		}
	}

	return out
}

// Quorum is the number of reports needed to throw out a card when
// totalPlayers are connected: a simple majority of everyone but the giver.
func Quorum(totalPlayers int) int {
	guessers := max(1, totalPlayers-1)

	return (guessers + 2) / 2
}
