/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wikilinks

import (
	"math/rand/v2"
	"time"
)

var (
	avatarColors = []string{
		"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
		"#FECA57", "#FF9FF3", "#54A0FF", "#5F27CD",
	}
	avatarIcons = []string{
		"🎯", "🎪", "🎨", "🎭", "🎲", "🎸", "🎺", "🎻",
		"🎹", "🚀", "🦄", "🐸", "🐙", "🦋", "🌟",
	}
)

// Avatar is purely cosmetic and never changes after join.
type Avatar struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func RandomAvatar(rng *rand.Rand) Avatar {
	return Avatar{
		Color: avatarColors[rng.IntN(len(avatarColors))],
		Icon:  avatarIcons[rng.IntN(len(avatarIcons))],
	}
}

type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	IsJudge  bool      `json:"isJudge"`
	Avatar   Avatar    `json:"avatar"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Submission is a link handed in by a non-judge player for the current round.
type Submission struct {
	Link        string    `json:"link"`
	Title       string    `json:"title"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// HistoryEntry records one completed round. Entries are append-only and refer
// to players by display name.
type HistoryEntry struct {
	RoundNumber     int            `json:"roundNumber"`
	Judge           string         `json:"judge"`
	SelectedLink    Submission     `json:"selectedLink"`
	ActualSubmitter string         `json:"actualSubmitter"`
	JudgeGuess      string         `json:"judgeGuess"`
	WasCorrect      bool           `json:"wasCorrect"`
	ScoreChanges    map[string]int `json:"scoreChanges"`
	Timestamp       time.Time      `json:"timestamp"`
}
