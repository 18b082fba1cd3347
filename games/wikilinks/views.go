/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wikilinks

import (
	"maps"
)

// StateView is what every client sees after each change.
type StateView struct {
	Players         []Player    `json:"players"`
	GamePhase       Phase       `json:"gamePhase"`
	SelectedLink    *Submission `json:"selectedLink"`
	RoundNumber     int         `json:"roundNumber"`
	SubmissionCount int         `json:"submissionCount"`
	TotalNonJudges  int         `json:"totalNonJudges"`
}

type PlayerStats struct {
	Name             string `json:"name"`
	Score            int    `json:"score"`
	RoundsAsJudge    int    `json:"roundsAsJudge"`
	CorrectGuesses   int    `json:"correctGuesses"`
	TimesFooledJudge int    `json:"timesFooledJudge"`
}

type Stats struct {
	TotalRounds int            `json:"totalRounds"`
	GameHistory []HistoryEntry `json:"gameHistory"`
	PlayerStats []PlayerStats  `json:"playerStats"`
}

// Players returns a copy of every player in join order.
func (e *Engine) Players() []Player {
	players := make([]Player, 0, len(e.order))
	for _, id := range e.order {
		players = append(players, *e.players[id])
	}

	return players
}

func (e *Engine) State() StateView {
	var selected *Submission
	if e.selectedLink != nil {
		sub := *e.selectedLink
		selected = &sub
	}

	return StateView{
		Players:         e.Players(),
		GamePhase:       e.phase,
		SelectedLink:    selected,
		RoundNumber:     e.roundNumber,
		SubmissionCount: len(e.submissions),
		TotalNonJudges:  e.nonJudgeCount(),
	}
}

func (e *Engine) Stats() Stats {
	return BuildStats(e.roundNumber, e.history, e.Players())
}

// BuildStats aggregates history per player. Entries are matched on display
// name, so a player who rejoins under the same name keeps their record and a
// departed player's rounds stay in the history.
func BuildStats(totalRounds int, history []HistoryEntry, players []Player) Stats {
	entries := make([]HistoryEntry, len(history))
	for i, h := range history {
		h.ScoreChanges = maps.Clone(h.ScoreChanges)
		entries[i] = h
	}

	stats := make([]PlayerStats, 0, len(players))
	for _, p := range players {
		ps := PlayerStats{
			Name:  p.Name,
			Score: p.Score,
		}

		for _, h := range history {
			if h.Judge == p.Name {
				ps.RoundsAsJudge++
				if h.WasCorrect {
					ps.CorrectGuesses++
				}
			}
			if h.ActualSubmitter == p.Name && !h.WasCorrect {
				ps.TimesFooledJudge++
			}
		}

		stats = append(stats, ps)
	}

	return Stats{
		TotalRounds: totalRounds,
		GameHistory: entries,
		PlayerStats: stats,
	}
}
