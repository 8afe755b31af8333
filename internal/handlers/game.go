package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/autoplay"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/lobby"
	"github.com/vancomm/minesweeper/internal/mines"
)

var ErrBoardSize = errors.New("board size out of range")

type newGameParams struct {
	Difficulty string `schema:"difficulty"`
	Rows       int    `schema:"rows"`
	Cols       int    `schema:"cols"`
}

type timingParams struct {
	StepMs      *int64 `schema:"step_ms"`
	HighlightMs *int64 `schema:"highlight_ms"`
	DeadMs      *int64 `schema:"dead_ms"`
}

type GameOptions struct {
	BasePath string
	MinSide  int
	MaxSide  int

	Step      time.Duration
	Highlight *time.Duration
	Dead      *time.Duration
}

type GameHandler struct {
	lobby    *lobby.Lobby
	jwt      *config.JWT
	cookies  config.Cookies
	upgrader *websocket.Upgrader
	opts     GameOptions
	now      func() time.Time
}

func NewGameHandler(
	l *lobby.Lobby,
	jwt *config.JWT,
	cookies config.Cookies,
	upgrader *websocket.Upgrader,
	opts GameOptions,
) *GameHandler {
	return &GameHandler{
		lobby:    l,
		jwt:      jwt,
		cookies:  cookies,
		upgrader: upgrader,
		opts:     opts,
		now:      time.Now,
	}
}

type createdGame struct {
	Token string   `json:"token"`
	Game  GameView `json:"game"`
}

func (h *GameHandler) difficulty(p newGameParams) (mines.Difficulty, error) {
	if p.Difficulty == "" {
		p.Difficulty = mines.Easy
	}
	d, err := mines.ParseDifficulty(p.Difficulty, p.Rows, p.Cols)
	if err != nil {
		return d, err
	}
	if d.Name == mines.Custom {
		for _, side := range []int{d.Rows, d.Cols} {
			if side < h.opts.MinSide || side > h.opts.MaxSide {
				return d, fmt.Errorf(
					"%s: sides must be within %d..%d: %w",
					d.Size(), h.opts.MinSide, h.opts.MaxSide, ErrBoardSize,
				)
			}
		}
	}
	return d, nil
}

func (h *GameHandler) tablePath(id uuid.UUID) string {
	return h.opts.BasePath + "/api/game/" + id.String()
}

func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p newGameParams
	if err := newDecoder().Decode(&p, r.URL.Query()); err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid game parameters", err)
		return
	}
	d, err := h.difficulty(p)
	if err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid game parameters", err)
		return
	}

	e, err := h.lobby.Create(d)
	if err != nil {
		Log.WithError(err).Error("unable to create table")
		sendError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}

	now := h.now()
	token, err := h.jwt.Sign(e.ID.String(), now)
	if err != nil {
		Log.WithError(err).Error("unable to sign table token")
		h.lobby.Remove(e.ID)
		sendError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}
	h.cookies.SetTableToken(w, h.tablePath(e.ID), token, now.Add(h.jwt.TokenLifetime.Duration))

	sendData(w, createdGame{
		Token: token,
		Game:  NewGameView(e.ID.String(), e.Table.Snapshot()),
	})
}

// entry resolves the table named in the path and checks the caller holds
// its token. It writes the error response itself.
func (h *GameHandler) entry(w http.ResponseWriter, r *http.Request) (*lobby.Entry, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendError(w, http.StatusBadRequest, "Invalid game id")
		return nil, false
	}
	e, err := h.lobby.Get(id)
	if err != nil {
		sendError(w, http.StatusNotFound, "Game not found")
		return nil, false
	}

	token, ok := config.TableToken(r)
	if !ok {
		sendError(w, http.StatusUnauthorized, "Missing table token")
		return nil, false
	}
	claims, err := h.jwt.Parse(token)
	if err != nil || claims.TableID != id.String() {
		Log.WithFields(logrus.Fields{
			"table": id.String(),
			"error": err,
		}).Debug("rejected table token")
		sendError(w, http.StatusForbidden, "Invalid table token")
		return nil, false
	}
	return e, true
}

func (h *GameHandler) sendView(w http.ResponseWriter, e *lobby.Entry) {
	sendData(w, NewGameView(e.ID.String(), e.Table.Snapshot()))
}

func (h *GameHandler) View(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	h.sendView(w, e)
}

func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}

	var p newGameParams
	if err := newDecoder().Decode(&p, r.URL.Query()); err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid game parameters", err)
		return
	}
	if p.Difficulty == "" {
		if err := e.Table.Restart(); err != nil {
			Log.WithError(err).Error("unable to restart table")
			sendError(w, http.StatusInternalServerError, "Failed to create game")
			return
		}
		h.sendView(w, e)
		return
	}

	d, err := h.difficulty(p)
	if err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid game parameters", err)
		return
	}
	if err := e.Table.NewGame(d); err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid game parameters", err)
		return
	}
	h.sendView(w, e)
}

// Act handles one of the three cell inputs.
func (h *GameHandler) Act(click game.Click) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := h.entry(w, r)
		if !ok {
			return
		}

		var p mines.Point
		if err := newDecoder().Decode(&p, r.URL.Query()); err != nil {
			sendRejection(w, http.StatusBadRequest, "Invalid cell", err)
			return
		}

		_, err := e.Table.Act(game.Action{Click: click, Point: p})
		switch {
		case errors.Is(err, mines.ErrOutOfBounds):
			sendRejection(w, http.StatusBadRequest, "Invalid cell", err)
			return
		case err != nil:
			sendError(w, http.StatusInternalServerError, "Game is in an invalid state")
			return
		}
		h.sendView(w, e)
	}
}

func durationFromMs(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}

func (h *GameHandler) timing(p timingParams) (autoplay.Timing, error) {
	step, highlight, dead := h.opts.Step, h.opts.Highlight, h.opts.Dead
	if p.StepMs != nil {
		step = *durationFromMs(p.StepMs)
		if step == 0 {
			return autoplay.Timing{}, fmt.Errorf("step period must be positive")
		}
		highlight, dead = nil, nil
	}
	if p.HighlightMs != nil {
		highlight = durationFromMs(p.HighlightMs)
	}
	if p.DeadMs != nil {
		dead = durationFromMs(p.DeadMs)
	}
	return autoplay.NewTiming(step, highlight, dead)
}

func (h *GameHandler) StartAutoplay(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}

	var p timingParams
	if err := newDecoder().Decode(&p, r.URL.Query()); err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid timing", err)
		return
	}
	t, err := h.timing(p)
	if err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid timing", err)
		return
	}

	err = e.StartAutoplay(t)
	switch {
	case errors.Is(err, autoplay.ErrGameOver):
		sendError(w, http.StatusConflict, "Game is over")
		return
	case err != nil:
		sendError(w, http.StatusInternalServerError, "Game is in an invalid state")
		return
	}
	h.sendView(w, e)
}

func (h *GameHandler) StopAutoplay(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	e.Driver.Stop()
	h.sendView(w, e)
}

func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	if err := h.lobby.Remove(e.ID); err != nil && !errors.Is(err, lobby.ErrNotFound) {
		sendError(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	h.cookies.ClearTableToken(w, h.tablePath(e.ID))
	sendJSONOrLog(w, http.StatusOK, envelope{OK: true, ID: e.ID.String()})
}
