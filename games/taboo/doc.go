// Package taboo runs a single shared game of Taboo.
//
// One player, the giver, sees a secret word and a list of forbidden words,
// and has to get everyone else to say the secret word without using any of
// them before the clock runs out.
//
// How to play
//   - Players join the lobby with a unique name; the first to join is host
//   - The host starts the game once at least three players are in
//   - Players take turns giving, in an order shuffled at the start of the game
//   - The first guesser to name the word scores 4 points, and the giver 1
//   - Guessers can report a card mid-turn if the giver slipped; a majority
//     of reports throws the card out
//   - After each turn, every guessed card is shown to the whole room, which
//     can vote to take the giver's point away
//   - After the last round, or once the deck runs out, the podium is shown
//     and the host can send everyone back to the lobby
//
// Implementation details:
//   - All state lives in one Controller; every action and timer runs under
//     its lock
//   - Clients are kept in sync by polling Snapshot, which hides the card
//     from everyone but the giver
//   - Events are one-shot notifications for toasts, never the source of truth
package taboo
