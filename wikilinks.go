/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Wikilinks Game
//
// Everyone but the judge submits a link to a Wikipedia article. Once all links
// are in, one is picked at random and shown to the room, and the judge guesses
// who sent it.
//
// Features:
// - One room per server, served at /wikilinks with its websocket at /wikilinks/ws
// - Connections get a uuid on connect and join with a display name
// - The first player to join becomes judge; a new judge is drawn if they leave
// - Validation errors are sent only to the offending client
// - Read-only state and stats over plain HTTP for scoreboards
// - QR code for the room URL, backed by go-qrcode
// - Random article suggestions from the MediaWiki API

package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/wikiguess/games/wikilinks"
)

const (
	gamePath = "/wikilinks"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

// Messages coming from clients
type ClientMessage struct {
	Type            string         `json:"type"`
	PlayerName      string         `json:"playerName,omitempty"`      // join-game
	Link            string         `json:"link,omitempty"`            // submit-link
	GuessedPlayerID string         `json:"guessedPlayerId,omitempty"` // judge-guess
	Settings        map[string]any `json:"settings,omitempty"`        // update-settings
}

// Messages sent to clients

type ConnectionMessage struct {
	Type     string `json:"type"` // "connection-established"
	SocketID string `json:"socketId"`
}

type JoinSuccessMessage struct {
	Type       string           `json:"type"` // "join-success"
	PlayerID   string           `json:"playerId"`
	PlayerData wikilinks.Player `json:"playerData"`
}

// SimpleMessage carries join-error and game-error text.
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type StateMessage struct {
	Type string `json:"type"` // "game-state-update"
	wikilinks.StateView
}

type NotificationMessage struct {
	Type      string `json:"type"` // "player-notification"
	Kind      string `json:"kind"` // "player-joined" or "player-left"
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

type RoundStartedMessage struct {
	Type        string `json:"type"` // "round-started"
	RoundNumber int    `json:"roundNumber"`
	Judge       string `json:"judge"`
}

type SubmissionMessage struct {
	Type  string `json:"type"` // "submission-confirmed"
	Title string `json:"title"`
}

type JudgingMessage struct {
	Type         string               `json:"type"` // "judging-phase-started"
	SelectedLink wikilinks.Submission `json:"selectedLink"`
	JudgeID      string               `json:"judgeId"`
}

type RoundCompletedMessage struct {
	Type string `json:"type"` // "round-completed"
	*wikilinks.RoundResult
}

type StatsMessage struct {
	Type string `json:"type"` // "game-stats"
	wikilinks.Stats
}

// SettingsMessage keeps Settings in a named field so its MarshalJSON is not
// promoted over the whole message.
type SettingsMessage struct {
	Type     string             `json:"type"` // "settings-updated"
	Settings wikilinks.Settings `json:"settings"`
}

type ResetMessage struct {
	Type     string  `json:"type"` // "game-reset"
	Message  string  `json:"message"`
	NewJudge *string `json:"newJudge"`
}

type JudgeChangedMessage struct {
	Type     string `json:"type"` // "judge-changed"
	NewJudge string `json:"newJudge"`
	Reason   string `json:"reason"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type request struct {
	client *Client
	msg    ClientMessage
}

// query runs fn against the engine on the hub goroutine.
type query struct {
	fn    func(*wikilinks.Engine) any
	reply chan any
}

type Hub struct {
	engine  *wikilinks.Engine
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	requests chan request
	queries  chan query

	quit     chan struct{}
	stopOnce sync.Once
}

func newHub(engine *wikilinks.Engine) *Hub {
	return &Hub{
		engine:   engine,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		requests: make(chan request),
		queries:  make(chan query),
		quit:     make(chan struct{}),
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.sendTo(c, ConnectionMessage{
				Type:     "connection-established",
				SocketID: c.playerID,
			})

		case c := <-h.unreg:
			h.handleDisconnect(cfg, c)

		case req := <-h.requests:
			h.handle(cfg, req.client, req.msg)

		case q := <-h.queries:
			q.reply <- q.fn(h.engine)

		case <-h.quit:
			for c := range h.clients {
				h.drop(c)
				_ = c.conn.Close()
			}

			return
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// inspect reads from the engine without racing the run loop. It returns false
// once the hub has stopped.
func (h *Hub) inspect(fn func(*wikilinks.Engine) any) (any, bool) {
	q := query{fn: fn, reply: make(chan any, 1)}

	select {
	case h.queries <- q:
	case <-h.quit:
		return nil, false
	}

	return <-q.reply, true
}

func (h *Hub) handle(cfg *Config, c *Client, msg ClientMessage) {
	switch msg.Type {
	case "join-game":
		h.handleJoin(cfg, c, msg)
	case "start-round":
		h.handleStartRound(cfg, c)
	case "submit-link":
		h.handleSubmitLink(cfg, c, msg)
	case "judge-guess":
		h.handleGuess(cfg, c, msg)
	case "get-stats":
		h.sendTo(c, StatsMessage{Type: "game-stats", Stats: h.engine.Stats()})
	case "update-settings":
		h.handleSettings(cfg, c, msg)
	case "reset-game":
		h.handleReset(cfg)
	default:
		// ignore unknown types
	}
}

func (h *Hub) handleJoin(cfg *Config, c *Client, msg ClientMessage) {
	if _, ok := h.engine.Player(c.playerID); ok {
		h.sendError(c, "join-error", wikilinks.ErrJoined)

		return
	}

	name, err := h.engine.CheckJoin(msg.PlayerName)
	if err != nil {
		h.sendError(c, "join-error", err)

		return
	}

	h.engine.AddPlayer(c.playerID, name)
	player, _ := h.engine.Player(c.playerID)

	h.sendTo(c, JoinSuccessMessage{
		Type:       "join-success",
		PlayerID:   c.playerID,
		PlayerData: player,
	})

	h.broadcastState()
	h.broadcast(NotificationMessage{
		Type:      "player-notification",
		Kind:      "player-joined",
		Message:   name + " joined the game",
		Timestamp: time.Now().UnixMilli(),
	})

	logf(cfg, "GAMES: Player %q joined", name)
}

func (h *Hub) handleStartRound(cfg *Config, c *Client) {
	judge, round, err := h.engine.StartRound(c.playerID)
	if err != nil {
		h.sendError(c, "game-error", err)

		return
	}

	h.broadcastState()
	h.broadcast(RoundStartedMessage{
		Type:        "round-started",
		RoundNumber: round,
		Judge:       judge,
	})

	logf(cfg, "GAMES: Round %d started by %q", round, judge)
}

func (h *Hub) handleSubmitLink(cfg *Config, c *Client, msg ClientMessage) {
	title, judging, err := h.engine.SubmitLink(c.playerID, strings.TrimSpace(msg.Link))
	if err != nil {
		h.sendError(c, "game-error", err)

		return
	}

	h.sendTo(c, SubmissionMessage{Type: "submission-confirmed", Title: title})
	h.broadcastState()

	if !judging {
		return
	}

	selected, _ := h.engine.SelectedLink()
	h.broadcast(JudgingMessage{
		Type:         "judging-phase-started",
		SelectedLink: selected,
		JudgeID:      h.engine.JudgeID(),
	})

	logf(cfg, "GAMES: All links in for round %d, judging %q", h.engine.RoundNumber(), selected.Title)
}

func (h *Hub) handleGuess(cfg *Config, c *Client, msg ClientMessage) {
	result, err := h.engine.JudgeGuess(c.playerID, msg.GuessedPlayerID)
	if err != nil {
		h.sendError(c, "game-error", err)

		return
	}

	h.broadcast(RoundCompletedMessage{Type: "round-completed", RoundResult: result})
	h.broadcastState()

	if result.WasCorrect {
		logf(cfg, "GAMES: Round %d: judge correctly guessed %q", result.RoundNumber, result.CorrectPlayer)
	} else {
		logf(cfg, "GAMES: Round %d: %q fooled the judge, who guessed %q", result.RoundNumber, result.CorrectPlayer, result.JudgeGuess)
	}
}

func (h *Hub) handleSettings(cfg *Config, c *Client, msg ClientMessage) {
	if p, ok := h.engine.Player(c.playerID); !ok || !p.IsJudge {
		h.sendError(c, "game-error", wikilinks.ErrNotJudgeSettings)

		return
	}

	partial := msg.Settings
	if partial == nil {
		partial = map[string]any{}
	}

	updated, err := h.engine.UpdateSettings(partial)
	if err != nil {
		h.sendError(c, "game-error", err)

		return
	}

	h.broadcast(SettingsMessage{Type: "settings-updated", Settings: updated})

	logf(cfg, "GAMES: Settings updated: max players %d, points %d/%d",
		updated.MaxPlayers, updated.PointsForCorrect, updated.PointsForFooling)
}

func (h *Hub) handleReset(cfg *Config) {
	judgeID := h.engine.ResetGameKeepPlayers()
	h.broadcastState()

	var judgeName *string
	if p, ok := h.engine.Player(judgeID); ok {
		judgeName = &p.Name
	}

	h.broadcast(ResetMessage{
		Type:     "game-reset",
		Message:  "Game has been reset",
		NewJudge: judgeName,
	})

	logf(cfg, "GAMES: Game reset")
}

func (h *Hub) handleDisconnect(cfg *Config, c *Client) {
	if h.clients[c] {
		h.drop(c)
	}

	player, ok := h.engine.Player(c.playerID)
	if !ok {
		return
	}

	wasJudge, newJudgeID := h.engine.RemovePlayer(c.playerID)

	if judge, ok := h.engine.Player(newJudgeID); wasJudge && ok {
		h.broadcast(JudgeChangedMessage{
			Type:     "judge-changed",
			NewJudge: judge.Name,
			Reason:   "Previous judge disconnected",
		})

		logf(cfg, "GAMES: %q is now the judge", judge.Name)
	}

	h.broadcast(NotificationMessage{
		Type:      "player-notification",
		Kind:      "player-left",
		Message:   player.Name + " left the game",
		Timestamp: time.Now().UnixMilli(),
	})
	h.broadcastState()

	logf(cfg, "GAMES: Player %q left", player.Name)
}

func (h *Hub) sendError(c *Client, kind string, err error) {
	h.sendTo(c, SimpleMessage{Type: kind, Message: err.Error()})
}

func (h *Hub) broadcastState() {
	h.broadcast(StateMessage{Type: "game-state-update", StateView: h.engine.State()})
}

// sendTo drops clients that cannot keep up rather than stall the room.
func (h *Hub) sendTo(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		h.drop(c)
	}
}

func (h *Hub) broadcast(msg any) {
	for c := range h.clients {
		h.sendTo(c, msg)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, hub *Hub, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errs <- err

			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, sendBufferSize),
			playerID: uuid.NewString(),
		}

		select {
		case hub.register <- client:
		case <-hub.quit:
			_ = conn.Close()

			return
		}

		logf(cfg, "SERVE: Websocket %s opened by %s", client.playerID, realIP(r))

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.quit:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		select {
		case h.requests <- request{client: c, msg: msg}:
		case <-h.quit:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// gameURL derives the public room URL, respecting TLS and X-Forwarded-Proto.
func gameURL(r *http.Request, suffix string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, suffix)
}

func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		const qrSize = 320

		png, err := qrcode.Encode(gameURL(r, "/qr"), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, err = w.Write(png)
		if err != nil {
			errs <- err
		}
	}
}

func serveGamePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/wikilinks/index.html")
		if err != nil {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, err = w.Write(data)
		if err != nil {
			errs <- err
		}
	}
}

// serveEngineJSON answers a read-only query from the hub goroutine.
func serveEngineJSON(cfg *Config, hub *Hub, fn func(*wikilinks.Engine) any, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		v, ok := hub.inspect(fn)
		if !ok {
			http.Error(w, "game is shutting down", http.StatusServiceUnavailable)

			return
		}

		writeJSON(cfg, w, http.StatusOK, v, errs)
	}
}

func serveRandomArticle(cfg *Config, articles *ArticleClient, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		article, err := articles.Random(r.Context())
		if err != nil {
			errs <- err

			writeJSON(cfg, w, http.StatusBadGateway, map[string]string{"error": "Could not fetch a random article"}, errs)

			return
		}

		writeJSON(cfg, w, http.StatusOK, article, errs)
	}
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any, errs chan<- error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs <- err
	}
}

// registerWikilinksGame sets up routes so that:
//   - $path          → HTML client
//   - $path/ws       → WebSocket for the room
//   - $path/qr       → PNG QR code for the room URL
//   - $path/random   → a random article suggestion
//   - $path/state    → current room state as JSON
//   - $path/stats    → game statistics as JSON
func registerWikilinksGame(cfg *Config, path string, mux *httprouter.Router, hub *Hub, articles *ArticleClient, errs chan<- error) {
	mux.GET(cfg.prefix+path, serveGamePage(cfg, errs))
	mux.GET(cfg.prefix+path+"/ws", serveWS(cfg, hub, errs))
	mux.GET(cfg.prefix+path+"/qr", serveQR(cfg, errs))
	mux.GET(cfg.prefix+path+"/random", serveRandomArticle(cfg, articles, errs))

	mux.GET(cfg.prefix+path+"/state", serveEngineJSON(cfg, hub, func(e *wikilinks.Engine) any {
		return e.State()
	}, errs))

	mux.GET(cfg.prefix+path+"/stats", serveEngineJSON(cfg, hub, func(e *wikilinks.Engine) any {
		return e.Stats()
	}, errs))
}
