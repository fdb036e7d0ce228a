/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const tick = time.Second

// Config tunes a Controller. Zero values fall back to the defaults below.
type Config struct {
	TurnDuration   time.Duration
	ReviewDuration time.Duration
	ReviewPause    time.Duration
	MaxRounds      int

	Scheduler Scheduler
	Notifier  Notifier

	// Rand returns a value in [0, n). Used for the turn order and card draws.
	Rand func(n int) int

	Logf func(format string, args ...any)
}

const (
	DefaultTurnDuration   = 90 * time.Second
	DefaultReviewDuration = 10 * time.Second
	DefaultReviewPause    = 3 * time.Second
	DefaultMaxRounds      = 3
)

// Controller owns the one game session. All mutation goes through its
// action methods and its own timers, serialized by mu.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	source CardSource
	s      *session

	timer Timer
	epoch uint64

	pending []Event
}

func NewController(source CardSource, cfg Config) *Controller {
	if cfg.TurnDuration <= 0 {
		cfg.TurnDuration = DefaultTurnDuration
	}
	if cfg.ReviewDuration <= 0 {
		cfg.ReviewDuration = DefaultReviewDuration
	}
	if cfg.ReviewPause <= 0 {
		cfg.ReviewPause = DefaultReviewPause
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	if cfg.Rand == nil {
		cfg.Rand = randomIndex
	}

	return &Controller{
		cfg:    cfg,
		source: source,
		s:      newSession(source.Cards(), cfg.MaxRounds),
	}
}

func randomIndex(n int) int {
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return rand.Intn(n)
	}

	return int(v.Int64())
}

func seconds(d time.Duration) int {
	return int((d + tick - 1) / tick)
}

func (c *Controller) logf(format string, args ...any) {
	if c.cfg.Logf != nil {
		c.cfg.Logf(format, args...)
	}
}

func (c *Controller) emit(e Event) {
	c.pending = append(c.pending, e)
}

// do runs fn as one atomic transition and then hands any events it
// produced to the notifier, outside the lock.
func (c *Controller) do(fn func() error) error {
	c.mu.Lock()
	err := fn()
	events := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(events) > 0 && c.cfg.Notifier != nil {
		c.cfg.Notifier.Notify(events)
	}

	return err
}

// schedule replaces any pending callback with fn, due after d.
func (c *Controller) schedule(d time.Duration, fn func()) {
	c.cancelTimer()

	epoch := c.epoch
	c.timer = c.cfg.Scheduler.AfterFunc(d, func() {
		c.fire(epoch, fn)
	})
}

func (c *Controller) cancelTimer() {
	c.epoch++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fire runs fn unless it was superseded after the timer had already fired.
func (c *Controller) fire(epoch uint64, fn func()) {
	_ = c.do(func() error {
		if epoch != c.epoch {
			return nil
		}
		c.timer = nil
		fn()

		return nil
	})
}

// appendLog records e in the turn's guess log and returns its display text.
func (c *Controller) appendLog(e GuessLogEntry) string {
	c.s.guessLog = append(c.s.guessLog, e)

	return e.Text()
}

func (c *Controller) player(id string) (*Player, error) {
	p, ok := c.s.players[id]
	if !ok {
		return nil, ErrUnknownPlayer
	}

	return p, nil
}

// Join adds a player under a display name that is unique ignoring case.
// The first player in an empty room becomes host.
func (c *Controller) Join(id, name string) error {
	return c.do(func() error {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			return ErrEmptyName
		case utf8.RuneCountInString(name) > MaxNameLength:
			return ErrNameTooLong
		}

		s := c.s
		if _, ok := s.players[id]; ok {
			return ErrAlreadyJoined
		}
		if s.phase != PhaseLobby {
			return ErrWrongPhase
		}
		for _, p := range s.players {
			if strings.EqualFold(p.Name, name) {
				return ErrNameTaken
			}
		}

		p := &Player{
			ID:     id,
			Name:   name,
			IsHost: len(s.players) == 0,
		}
		s.players[id] = p
		s.order = append(s.order, id)

		c.logf("Player %q joined", name)
		c.emit(Event{Type: EventPlayerJoined, PlayerID: id, PlayerName: name})

		return nil
	})
}

// Leave removes a player, handing off host and giver duties as needed.
func (c *Controller) Leave(id string) error {
	return c.do(func() error {
		s := c.s

		p, err := c.player(id)
		if err != nil {
			return err
		}

		wasGiver := s.inGame() && s.currentGiverID == id
		s.removePlayer(id)

		c.logf("Player %q left", p.Name)
		c.emit(Event{Type: EventPlayerLeft, PlayerID: id, PlayerName: p.Name})

		if len(s.players) == 0 {
			c.teardown()

			return nil
		}

		if s.host() == nil {
			next := s.players[s.order[0]]
			next.IsHost = true
			c.emit(Event{Type: EventHostChanged, PlayerID: next.ID, PlayerName: next.Name})
		}

		switch {
		case s.inGame() && len(s.players) < MinPlayers:
			c.resetToLobby("not enough players")
		case s.phase == PhaseTurn && wasGiver:
			s.currentGiverID = ""
			c.endTurn()
		case s.phase == PhaseReview && wasGiver:
			s.currentGiverID = ""
		case s.phase == PhaseTurn:
			c.checkLiveQuorum()
		}

		return nil
	})
}

// StartGame moves the lobby into the first turn.
func (c *Controller) StartGame(id string) error {
	return c.do(func() error {
		s := c.s

		p, err := c.player(id)
		if err != nil {
			return err
		}
		switch {
		case !p.IsHost:
			return ErrNotHost
		case s.phase != PhaseLobby:
			return ErrWrongPhase
		case len(s.players) < MinPlayers:
			return ErrNotEnoughPlayers
		}

		order := make([]string, len(s.order))
		copy(order, s.order)
		for i := len(order) - 1; i > 0; i-- {
			j := c.cfg.Rand(i + 1)
			order[i], order[j] = order[j], order[i]
		}

		s.turnOrder = order
		s.turnIndex = 0
		s.round = 1
		s.used = make(map[int]bool)
		s.deckExhausted = false
		for _, pl := range s.players {
			pl.Score = 0
		}

		c.logf("Game started by %q with %d players", p.Name, len(s.players))
		c.beginTurn()

		return nil
	})
}

// Guess checks text against the card in play.
func (c *Controller) Guess(id, text string) error {
	return c.do(func() error {
		s := c.s

		p, err := c.player(id)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		switch {
		case s.phase != PhaseTurn:
			return ErrWrongPhase
		case id == s.currentGiverID:
			return ErrIsGiver
		case text == "":
			return ErrEmptyGuess
		case s.currentCard == nil:
			return ErrNoCardInPlay
		case s.wordGuessedThisCard:
			return ErrCardSolved
		}

		card := *s.currentCard
		if !Matches(text, card.TargetWord) {
			line := c.appendLog(GuessLogEntry{Kind: EntryGuess, PlayerName: p.Name, Guess: text})
			c.emit(Event{Type: EventGuess, PlayerID: id, PlayerName: p.Name, Text: line})

			return nil
		}

		giver := s.players[s.currentGiverID]
		s.wordGuessedThisCard = true
		p.Score += GuesserPoints
		giver.Score += GiverPoints
		s.turnSuccesses = append(s.turnSuccesses, Success{
			Card:      card,
			GuesserID: id,
			GiverID:   giver.ID,
		})
		line := c.appendLog(GuessLogEntry{Kind: EntrySuccess, PlayerName: p.Name, Word: card.TargetWord})

		c.logf("%q guessed %q from %q", p.Name, card.TargetWord, giver.Name)
		c.emit(Event{
			Type:       EventCardResolved,
			Result:     EntrySuccess,
			PlayerID:   id,
			PlayerName: p.Name,
			Word:       card.TargetWord,
			Text:       line,
		})

		if s.timeLeft > 0 {
			c.nextCard()
		} else {
			c.endTurn()
		}

		return nil
	})
}

// SkipCard lets the giver give up on the current card.
func (c *Controller) SkipCard(id string) error {
	return c.do(func() error {
		s := c.s

		if _, err := c.player(id); err != nil {
			return err
		}
		switch {
		case s.phase != PhaseTurn:
			return ErrWrongPhase
		case id != s.currentGiverID:
			return ErrNotGiver
		case s.timeLeft <= 0:
			return ErrTimeUp
		case s.currentCard == nil:
			return ErrNoCardInPlay
		}

		word := s.currentCard.TargetWord
		line := c.appendLog(GuessLogEntry{Kind: EntrySkipped, Word: word})
		c.emit(Event{Type: EventCardResolved, Result: EntrySkipped, Word: word, Text: line})

		c.nextCard()

		return nil
	})
}

// ReportLive flags the card in play as broken by the giver.
func (c *Controller) ReportLive(id string) error {
	return c.do(func() error {
		s := c.s

		if _, err := c.player(id); err != nil {
			return err
		}
		switch {
		case s.phase != PhaseTurn:
			return ErrWrongPhase
		case id == s.currentGiverID:
			return ErrIsGiver
		case s.currentCard == nil:
			return ErrNoCardInPlay
		case s.wordGuessedThisCard:
			return ErrCardSolved
		case s.liveReports[id]:
			return ErrAlreadyReported
		}

		s.liveReports[id] = true
		c.checkLiveQuorum()

		return nil
	})
}

// ReportReview votes to throw out the card under review. Votes are
// counted when the review window closes.
func (c *Controller) ReportReview(id string) error {
	return c.do(func() error {
		s := c.s

		if _, err := c.player(id); err != nil {
			return err
		}
		switch {
		case s.phase != PhaseReview:
			return ErrWrongPhase
		case s.currentReview == nil || s.reviewOutcome != "":
			return ErrNothingToReview
		case id == s.currentReview.GiverID:
			return ErrReportOwnReview
		case s.reviewReports[id]:
			return ErrAlreadyReported
		}

		s.reviewReports[id] = true

		return nil
	})
}

// PlayAgain sends the podium back to the lobby with the same roster.
func (c *Controller) PlayAgain(id string) error {
	return c.do(func() error {
		p, err := c.player(id)
		if err != nil {
			return err
		}
		switch {
		case !p.IsHost:
			return ErrNotHost
		case c.s.phase != PhasePodium:
			return ErrWrongPhase
		}

		c.resetToLobby("play again")

		return nil
	})
}

func (c *Controller) checkLiveQuorum() {
	s := c.s
	if s.phase != PhaseTurn || s.currentCard == nil || s.wordGuessedThisCard {
		return
	}
	if len(s.liveReports) < Quorum(len(s.players)) {
		return
	}

	word := s.currentCard.TargetWord
	line := c.appendLog(GuessLogEntry{Kind: EntryInvalidated, Word: word})

	c.logf("%q thrown out after %d reports", word, len(s.liveReports))
	c.emit(Event{Type: EventCardResolved, Result: EntryInvalidated, Word: word, Text: line})

	c.nextCard()
}

// beginTurn hands the next present player in the rotation a fresh card.
func (c *Controller) beginTurn() {
	s := c.s

	for {
		if s.round > s.maxRounds {
			c.endGame()

			return
		}
		if s.turnIndex < len(s.turnOrder) {
			if _, ok := s.players[s.turnOrder[s.turnIndex]]; ok {
				break
			}
		}
		c.advanceRotation()
	}

	giver := s.players[s.turnOrder[s.turnIndex]]

	s.phase = PhaseTurn
	s.currentGiverID = giver.ID
	s.timeLeft = seconds(c.cfg.TurnDuration)
	s.guessLog = nil
	s.turnSuccesses = nil
	s.currentReview = nil
	s.reviewOutcome = ""

	if !c.drawCard() {
		c.endGame()

		return
	}

	c.logf("Round %d: %q is giving", s.round, giver.Name)
	c.emit(Event{Type: EventTurnStarted, PlayerID: giver.ID, PlayerName: giver.Name, Round: s.round})

	c.schedule(tick, c.turnTick)
}

func (c *Controller) advanceRotation() {
	s := c.s

	s.turnIndex++
	if s.turnIndex >= len(s.turnOrder) {
		s.turnIndex = 0
		s.round++
	}
}

// drawCard deals a random unused card, or reports false once the deck is empty.
func (c *Controller) drawCard() bool {
	s := c.s

	s.currentCard = nil
	s.wordGuessedThisCard = false
	clear(s.liveReports)

	unused := s.unusedIndices()
	if len(unused) == 0 {
		s.deckExhausted = true

		return false
	}

	i := unused[c.cfg.Rand(len(unused))]
	s.used[i] = true
	card := s.cards[i]
	s.currentCard = &card

	return true
}

func (c *Controller) nextCard() {
	if !c.drawCard() {
		c.logf("Deck exhausted")
		c.endTurn()
	}
}

func (c *Controller) turnTick() {
	s := c.s
	if s.phase != PhaseTurn {
		return
	}

	s.timeLeft--
	if s.timeLeft <= 0 {
		s.timeLeft = 0
		c.endTurn()

		return
	}

	c.schedule(tick, c.turnTick)
}

// endTurn closes the turn and replays its successes for review.
func (c *Controller) endTurn() {
	s := c.s

	c.cancelTimer()
	s.phase = PhaseReview
	s.currentCard = nil
	s.wordGuessedThisCard = false
	s.timeLeft = 0
	clear(s.liveReports)

	if len(s.turnSuccesses) > 0 {
		c.emit(Event{Type: EventReviewStarted, Text: pluralCards(len(s.turnSuccesses))})
	}

	c.startReviewItem()
}

func pluralCards(n int) string {
	if n == 1 {
		return "1 card to review"
	}

	return fmt.Sprintf("%d cards to review", n)
}

func (c *Controller) startReviewItem() {
	s := c.s

	if len(s.turnSuccesses) == 0 {
		c.finishReview()

		return
	}

	item := s.turnSuccesses[0]
	s.turnSuccesses = s.turnSuccesses[1:]

	s.currentReview = &item
	s.reviewOutcome = ""
	clear(s.reviewReports)
	s.timeLeft = seconds(c.cfg.ReviewDuration)

	c.schedule(tick, c.reviewTick)
}

func (c *Controller) reviewTick() {
	s := c.s
	if s.phase != PhaseReview || s.currentReview == nil || s.reviewOutcome != "" {
		return
	}

	s.timeLeft--
	if s.timeLeft <= 0 {
		s.timeLeft = 0
		c.resolveReview()

		return
	}

	c.schedule(tick, c.reviewTick)
}

// resolveReview counts the reports on the current item and revokes the
// giver's point when a majority of the other players objected.
func (c *Controller) resolveReview() {
	s := c.s
	item := s.currentReview

	votes := 0
	for id := range s.reviewReports {
		if _, ok := s.players[id]; ok && id != item.GiverID {
			votes++
		}
	}

	s.reviewOutcome = OutcomeValidated
	if votes >= Quorum(len(s.players)) {
		s.reviewOutcome = OutcomeInvalidated
		if giver, ok := s.players[item.GiverID]; ok {
			giver.Score = max(0, giver.Score-GiverPoints)
		}
	}

	c.logf("Review of %q: %s (%d reports)", item.Card.TargetWord, s.reviewOutcome, votes)
	c.emit(Event{
		Type:    EventReviewItemResolved,
		Word:    item.Card.TargetWord,
		Outcome: s.reviewOutcome,
	})

	c.schedule(c.cfg.ReviewPause, c.startReviewItem)
}

// finishReview ends the review and moves the rotation along.
func (c *Controller) finishReview() {
	s := c.s

	c.cancelTimer()
	s.currentReview = nil
	s.reviewOutcome = ""
	s.turnSuccesses = nil
	clear(s.reviewReports)

	c.emit(Event{Type: EventReviewEnded})

	if s.deckExhausted {
		c.endGame()

		return
	}

	c.advanceRotation()
	c.beginTurn()
}

func (c *Controller) endGame() {
	s := c.s

	c.cancelTimer()
	s.phase = PhasePodium
	s.round = min(s.round, s.maxRounds)
	s.currentCard = nil
	s.currentGiverID = ""
	s.wordGuessedThisCard = false
	s.currentReview = nil
	s.reviewOutcome = ""
	s.turnSuccesses = nil
	s.timeLeft = 0
	clear(s.liveReports)
	clear(s.reviewReports)

	winner := ""
	best := -1
	for _, id := range s.order {
		if p := s.players[id]; p.Score > best {
			best = p.Score
			winner = p.Name
		}
	}

	c.logf("Game over, %q wins with %d points", winner, best)
	c.emit(Event{Type: EventGameOver, PlayerName: winner})
}

// resetToLobby abandons any game in progress and zeroes the scores.
func (c *Controller) resetToLobby(reason string) {
	s := c.s

	c.cancelTimer()
	s.phase = PhaseLobby
	s.turnOrder = nil
	s.turnIndex = 0
	s.round = 0
	s.used = make(map[int]bool)
	s.deckExhausted = false
	s.currentCard = nil
	s.currentGiverID = ""
	s.timeLeft = 0
	s.wordGuessedThisCard = false
	s.guessLog = nil
	s.turnSuccesses = nil
	s.currentReview = nil
	s.reviewOutcome = ""
	clear(s.liveReports)
	clear(s.reviewReports)
	for _, p := range s.players {
		p.Score = 0
	}

	c.logf("Back to lobby: %s", reason)
	c.emit(Event{Type: EventGameReset, Reason: reason})
}

// teardown starts over from an empty room with a freshly loaded deck.
func (c *Controller) teardown() {
	c.cancelTimer()
	c.s = newSession(c.source.Cards(), c.cfg.MaxRounds)

	c.logf("Room empty, session reset")
}
