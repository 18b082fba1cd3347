/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package wikilinks implements the round engine for the "who submitted this
// Wikipedia link" party game.
//
// One player per round is the judge. Every other player submits a link to a
// Wikipedia article, one of the submissions is picked at random, and the judge
// guesses who submitted it. A correct guess rewards the judge and the
// submitter; a wrong guess rewards only the submitter for fooling the judge.
//
// The Engine is not safe for concurrent use. The server owns a single Engine
// from one goroutine and applies commands one at a time.
package wikilinks

import (
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength is counted in runes.
const MaxNameLength = 20

type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseSubmitting Phase = "submitting"
	PhaseJudging    Phase = "judging"
	PhaseScoring    Phase = "scoring"
)

type Engine struct {
	players     map[string]*Player
	order       []string // player ids in join order
	submissions map[string]Submission

	selectedLink   *Submission
	selectedPlayer string

	phase       Phase
	roundNumber int
	history     []HistoryEntry
	settings    Settings

	rng *rand.Rand
	now func() time.Time
}

// New returns an empty room in the lobby. rng drives judge assignment,
// submission selection and avatars.
func New(settings Settings, rng *rand.Rand) *Engine {
	e := &Engine{
		settings: settings,
		rng:      rng,
		now:      time.Now,
	}
	e.resetAll()

	return e
}

func (e *Engine) resetAll() {
	e.players = make(map[string]*Player)
	e.order = nil
	e.submissions = make(map[string]Submission)
	e.selectedLink = nil
	e.selectedPlayer = ""
	e.phase = PhaseLobby
	e.roundNumber = 0
	e.history = nil
}

// CheckJoin validates a requested display name against the current room and
// returns it trimmed. AddPlayer does not repeat these checks.
func (e *Engine) CheckJoin(name string) (string, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return "", ErrNameEmpty
	case utf8.RuneCountInString(name) > MaxNameLength:
		return "", ErrNameTooLong
	}

	for _, p := range e.players {
		if strings.EqualFold(p.Name, name) {
			return "", ErrNameTaken
		}
	}

	if len(e.players) >= e.settings.MaxPlayers {
		return "", ErrGameFull
	}

	return name, nil
}

// AddPlayer creates a player and returns the id of the judge, which is the
// new player if the room had no judge yet.
func (e *Engine) AddPlayer(id, name string) string {
	if _, ok := e.players[id]; !ok {
		e.order = append(e.order, id)
	}

	e.players[id] = &Player{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Avatar:   RandomAvatar(e.rng),
		JoinedAt: e.now(),
	}

	if judge := e.JudgeID(); judge != "" {
		return judge
	}

	e.players[id].IsJudge = true

	return id
}

// RemovePlayer drops a player and their pending submission. When the judge
// leaves a new one is drawn at random; when the last player leaves the room
// returns to the lobby with its settings intact.
func (e *Engine) RemovePlayer(id string) (wasJudge bool, newJudgeID string) {
	p, ok := e.players[id]
	if !ok {
		return false, ""
	}

	wasJudge = p.IsJudge

	delete(e.players, id)
	delete(e.submissions, id)
	e.order = slices.DeleteFunc(e.order, func(pid string) bool { return pid == id })

	if len(e.players) == 0 {
		e.resetAll()

		return wasJudge, ""
	}

	if wasJudge {
		newJudgeID = e.assignRandomJudge()
		// judges never hold a submission
		delete(e.submissions, newJudgeID)
	}

	if e.selectedPlayer != "" {
		if _, ok := e.submissions[e.selectedPlayer]; !ok {
			e.reselect()
		}
	}

	return wasJudge, newJudgeID
}

// reselect replaces a selection whose submitter is gone. Outside judging the
// selection is only cleared.
func (e *Engine) reselect() {
	e.selectedLink = nil
	e.selectedPlayer = ""

	if e.phase == PhaseJudging && len(e.submissions) > 0 {
		e.selectSubmission()
	}
}

func (e *Engine) assignRandomJudge() string {
	if len(e.order) == 0 {
		return ""
	}

	for _, p := range e.players {
		p.IsJudge = false
	}

	pick := e.order[e.rng.IntN(len(e.order))]
	e.players[pick].IsJudge = true

	return pick
}

func (e *Engine) selectSubmission() {
	ids := e.submitterIDs()
	pick := ids[e.rng.IntN(len(ids))]

	sub := e.submissions[pick]
	e.selectedLink = &sub
	e.selectedPlayer = pick
}

// submitterIDs lists the ids holding a submission, in join order.
func (e *Engine) submitterIDs() []string {
	ids := make([]string, 0, len(e.submissions))
	for _, id := range e.order {
		if _, ok := e.submissions[id]; ok {
			ids = append(ids, id)
		}
	}

	return ids
}

func (e *Engine) nonJudgeCount() int {
	n := 0
	for _, p := range e.players {
		if !p.IsJudge {
			n++
		}
	}

	return n
}

// StartRound begins a new submission round. Only the judge may start it, and
// at least two other players are needed.
func (e *Engine) StartRound(requesterID string) (judgeName string, roundNumber int, err error) {
	p, ok := e.players[requesterID]
	if !ok || !p.IsJudge {
		return "", 0, ErrNotJudge
	}

	if e.nonJudgeCount() < 2 {
		return "", 0, ErrNotEnoughPlayers
	}

	e.submissions = make(map[string]Submission)
	e.selectedLink = nil
	e.selectedPlayer = ""
	e.phase = PhaseSubmitting
	e.roundNumber++

	return p.Name, e.roundNumber, nil
}

// SubmitLink records a player's link for the current round. Once every
// non-judge has submitted, one submission is picked at random and the round
// moves to judging.
func (e *Engine) SubmitLink(id, link string) (title string, movedToJudging bool, err error) {
	p, ok := e.players[id]
	switch {
	case !ok:
		return "", false, ErrNotJoined
	case p.IsJudge:
		return "", false, ErrJudgeCannotSubmit
	case e.phase != PhaseSubmitting:
		return "", false, ErrNotSubmitting
	case !IsValidWikipediaURL(link):
		return "", false, ErrInvalidLink
	}

	title = ExtractTitle(link)
	e.submissions[id] = Submission{
		Link:        link,
		Title:       title,
		SubmittedAt: e.now(),
	}

	if n := e.nonJudgeCount(); n > 0 && len(e.submissions) == n {
		e.selectSubmission()
		e.phase = PhaseJudging
		movedToJudging = true
	}

	return title, movedToJudging, nil
}

// SubmissionView is a submission with its submitter's name attached.
type SubmissionView struct {
	Player string `json:"player"`
	Submission
}

// RoundResult summarizes a judged round for every client.
type RoundResult struct {
	RoundNumber    int              `json:"roundNumber"`
	JudgeGuess     string           `json:"judgeGuess"`
	CorrectPlayer  string           `json:"correctPlayer"`
	WasCorrect     bool             `json:"wasCorrect"`
	SelectedLink   Submission       `json:"selectedLink"`
	ScoreChanges   map[string]int   `json:"scoreChanges"`
	AllSubmissions []SubmissionView `json:"allSubmissions"`
}

// JudgeGuess scores the judge's guess for the selected submission and closes
// the round. Scoring is asymmetric: a wrong guess costs the judge nothing but
// earns the submitter the fooling bonus.
func (e *Engine) JudgeGuess(judgeID, guessedPlayerID string) (*RoundResult, error) {
	judge, ok := e.players[judgeID]
	if !ok || !judge.IsJudge {
		return nil, ErrNotJudgeGuess
	}

	if e.phase != PhaseJudging {
		return nil, ErrNotJudging
	}

	guessed, ok := e.players[guessedPlayerID]
	if !ok {
		return nil, ErrInvalidGuess
	}

	submitter, ok := e.players[e.selectedPlayer]
	if !ok || e.selectedLink == nil {
		return nil, ErrNoSelection
	}

	wasCorrect := guessed.ID == submitter.ID
	changes := make(map[string]int, 2)

	if wasCorrect {
		judge.Score += e.settings.PointsForCorrect
		submitter.Score += e.settings.PointsForCorrect
		changes[judge.ID] = e.settings.PointsForCorrect
		changes[submitter.ID] = e.settings.PointsForCorrect
	} else {
		submitter.Score += e.settings.PointsForFooling
		changes[submitter.ID] = e.settings.PointsForFooling
	}

	e.history = append(e.history, HistoryEntry{
		RoundNumber:     e.roundNumber,
		Judge:           judge.Name,
		SelectedLink:    *e.selectedLink,
		ActualSubmitter: submitter.Name,
		JudgeGuess:      guessed.Name,
		WasCorrect:      wasCorrect,
		ScoreChanges:    changes,
		Timestamp:       e.now(),
	})

	e.phase = PhaseScoring

	all := make([]SubmissionView, 0, len(e.submissions))
	for _, id := range e.submitterIDs() {
		name := "Unknown"
		if p, ok := e.players[id]; ok {
			name = p.Name
		}
		all = append(all, SubmissionView{Player: name, Submission: e.submissions[id]})
	}

	return &RoundResult{
		RoundNumber:    e.roundNumber,
		JudgeGuess:     guessed.Name,
		CorrectPlayer:  submitter.Name,
		WasCorrect:     wasCorrect,
		SelectedLink:   *e.selectedLink,
		ScoreChanges:   maps.Clone(changes),
		AllSubmissions: all,
	}, nil
}

// UpdateSettings merges partial over the current settings and returns the
// result. Callers are responsible for checking that the requester is judge.
func (e *Engine) UpdateSettings(partial map[string]any) (Settings, error) {
	merged, err := e.settings.Merge(partial)
	if err != nil {
		return e.Settings(), err
	}

	e.settings = merged

	return e.Settings(), nil
}

// ResetGameKeepPlayers starts the game over with the same players: scores,
// history and round counter are cleared and a new judge is drawn.
func (e *Engine) ResetGameKeepPlayers() string {
	for _, p := range e.players {
		p.Score = 0
		p.IsJudge = false
	}

	judge := e.assignRandomJudge()

	e.submissions = make(map[string]Submission)
	e.selectedLink = nil
	e.selectedPlayer = ""
	e.phase = PhaseLobby
	e.roundNumber = 0
	e.history = nil

	return judge
}

func (e *Engine) JudgeID() string {
	for _, id := range e.order {
		if e.players[id].IsJudge {
			return id
		}
	}

	return ""
}

func (e *Engine) Player(id string) (Player, bool) {
	p, ok := e.players[id]
	if !ok {
		return Player{}, false
	}

	return *p, true
}

func (e *Engine) PlayerCount() int {
	return len(e.players)
}

func (e *Engine) Phase() Phase {
	return e.phase
}

func (e *Engine) RoundNumber() int {
	return e.roundNumber
}

// SelectedLink returns the submission under judgment, if any.
func (e *Engine) SelectedLink() (Submission, bool) {
	if e.selectedLink == nil {
		return Submission{}, false
	}

	return *e.selectedLink, true
}

func (e *Engine) Settings() Settings {
	s := e.settings
	s.Extra = maps.Clone(s.Extra)

	return s
}
