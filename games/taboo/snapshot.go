/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import "sort"

// Snapshot is one player's view of the game.
type Snapshot struct {
	Phase     Phase    `json:"phase"`
	Players   []Player `json:"players"`
	Round     int      `json:"round"`
	MaxRounds int      `json:"maxRounds"`
	TimeLeft  int      `json:"timeLeft"`

	GiverID   string `json:"giverId,omitempty"`
	GiverName string `json:"giverName,omitempty"`

	// CurrentCard is only set for the giver during a turn.
	CurrentCard         *Card           `json:"currentCard"`
	WordGuessedThisCard bool            `json:"wordGuessedThisCard"`
	GuessLog            []GuessLogEntry `json:"guessLog"`
	LiveReports         int             `json:"liveReports"`

	Review         *ReviewView `json:"review,omitempty"`
	PendingReviews int         `json:"pendingReviews"`

	Quorum int     `json:"quorum"`
	You    *Viewer `json:"you,omitempty"`
}

// ReviewView is the card currently up for review, shown to everyone.
type ReviewView struct {
	Card        Card          `json:"card"`
	GuesserName string        `json:"guesserName"`
	GiverName   string        `json:"giverName"`
	Reports     int           `json:"reports"`
	Outcome     ReviewOutcome `json:"outcome,omitempty"`
}

// Viewer describes the player a Snapshot was built for.
type Viewer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsHost      bool   `json:"isHost"`
	IsGiver     bool   `json:"isGiver"`
	HasReported bool   `json:"hasReported"`
}

// Snapshot projects the session for viewerID. Viewers who have not joined
// get the same redacted view as any guesser.
func (c *Controller) Snapshot(viewerID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.s

	snap := Snapshot{
		Phase:               s.phase,
		Players:             make([]Player, 0, len(s.order)),
		Round:               s.round,
		MaxRounds:           s.maxRounds,
		TimeLeft:            s.timeLeft,
		WordGuessedThisCard: s.wordGuessedThisCard,
		GuessLog:            append([]GuessLogEntry{}, s.guessLog...),
		LiveReports:         len(s.liveReports),
		PendingReviews:      len(s.turnSuccesses),
		Quorum:              Quorum(len(s.players)),
	}

	for _, id := range s.order {
		snap.Players = append(snap.Players, *s.players[id])
	}
	if s.phase == PhasePodium {
		sort.SliceStable(snap.Players, func(i, j int) bool {
			return snap.Players[i].Score > snap.Players[j].Score
		})
	}

	if giver, ok := s.players[s.currentGiverID]; ok {
		snap.GiverID = giver.ID
		snap.GiverName = giver.Name
	}

	if s.phase == PhaseTurn && viewerID != "" && viewerID == s.currentGiverID && s.currentCard != nil {
		card := *s.currentCard
		snap.CurrentCard = &card
	}

	if s.phase == PhaseReview && s.currentReview != nil {
		item := s.currentReview
		snap.Review = &ReviewView{
			Card:        item.Card,
			GuesserName: c.nameOf(item.GuesserID),
			GiverName:   c.nameOf(item.GiverID),
			Reports:     len(s.reviewReports),
			Outcome:     s.reviewOutcome,
		}
	}

	if p, ok := s.players[viewerID]; ok {
		v := &Viewer{
			ID:      p.ID,
			Name:    p.Name,
			IsHost:  p.IsHost,
			IsGiver: s.inGame() && p.ID == s.currentGiverID,
		}
		switch s.phase {
		case PhaseTurn:
			v.HasReported = s.liveReports[p.ID]
		case PhaseReview:
			v.HasReported = s.reviewReports[p.ID]
		}
		snap.You = v
	}

	return snap
}

func (c *Controller) nameOf(id string) string {
	if p, ok := c.s.players[id]; ok {
		return p.Name
	}

	return ""
}
