package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/lobby"
	"github.com/vancomm/minesweeper/internal/mines"
)

const wsWriteWait = 10 * time.Second

type wsCommand string

const (
	wsNoop     wsCommand = "g"
	wsOpen     wsCommand = "o"
	wsFlag     wsCommand = "f"
	wsChord    wsCommand = "c"
	wsNewGame  wsCommand = "n"
	wsAutoplay wsCommand = "a"
	wsStop     wsCommand = "s"
)

var ErrUnknownCommand = errors.New("unknown command")

type wsMessage struct {
	Type  string    `json:"type"`
	Data  *GameView `json:"data,omitempty"`
	Error string    `json:"error,omitempty"`
}

type tableExecutor struct {
	h     *GameHandler
	entry *lobby.Entry
}

func parseRowCol(args []string) (mines.Point, error) {
	if len(args) != 2 {
		return mines.Point{}, fmt.Errorf("expected row and column")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return mines.Point{}, fmt.Errorf("row must be an int")
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return mines.Point{}, fmt.Errorf("column must be an int")
	}
	return mines.Point{Row: row, Col: col}, nil
}

func (x tableExecutor) act(click game.Click, args []string) error {
	p, err := parseRowCol(args)
	if err != nil {
		return err
	}
	_, err = x.entry.Table.Act(game.Action{Click: click, Point: p})
	return err
}

// newGame takes an optional difficulty name, followed by rows and columns
// for a custom board. Without arguments the current difficulty restarts.
func (x tableExecutor) newGame(args []string) error {
	if len(args) == 0 {
		return x.entry.Table.Restart()
	}
	p := newGameParams{Difficulty: args[0]}
	if len(args) == 3 {
		var err error
		if p.Rows, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("rows must be an int")
		}
		if p.Cols, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("columns must be an int")
		}
	}
	d, err := x.h.difficulty(p)
	if err != nil {
		return err
	}
	return x.entry.Table.NewGame(d)
}

// autoplay takes an optional step period in milliseconds.
func (x tableExecutor) autoplay(args []string) error {
	var p timingParams
	if len(args) > 0 {
		ms, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("step must be an int")
		}
		p.StepMs = &ms
	}
	t, err := x.h.timing(p)
	if err != nil {
		return err
	}
	return x.entry.StartAutoplay(t)
}

func (x tableExecutor) execute(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	switch cmd {
	case wsNoop:
		x.entry.Table.Changed()
		return nil
	case wsOpen:
		return x.act(game.LeftClick, args)
	case wsFlag:
		return x.act(game.RightClick, args)
	case wsChord:
		return x.act(game.DoubleClick, args)
	case wsNewGame:
		return x.newGame(args)
	case wsAutoplay:
		return x.autoplay(args)
	case wsStop:
		x.entry.Driver.Stop()
		return nil
	default:
		return fmt.Errorf("%q: %w", tokens[0], ErrUnknownCommand)
	}
}

// writeLoop owns all writes to conn. It pushes a view whenever the table
// changes and forwards command errors.
func (x tableExecutor) writeLoop(
	ctx context.Context, conn *websocket.Conn, changed <-chan struct{}, errs <-chan error,
) error {
	send := func(m wsMessage) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(m)
	}
	view := func() error {
		v := NewGameView(x.entry.ID.String(), x.entry.Table.Snapshot())
		return send(wsMessage{Type: "view", Data: &v})
	}

	if err := view(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			if err := view(); err != nil {
				return err
			}
		case err := <-errs:
			if err := send(wsMessage{Type: "error", Error: err.Error()}); err != nil {
				return err
			}
		}
	}
}

func (x tableExecutor) readLoop(ctx context.Context, conn *websocket.Conn, errs chan<- error) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
			err := x.execute(strings.TrimSpace(line))
			if err == nil {
				continue
			}
			if errors.Is(err, mines.ErrMalformedBoard) {
				return err
			}
			select {
			case errs <- err:
			case <-ctx.Done():
				return nil
			}
			break
		}
	}
}

// Connect upgrades to a websocket that accepts text commands, one per line:
//
//	o R C | f R C | c R C   reveal, flag or chord a cell
//	n [difficulty [R C]]    new game
//	a [step_ms]             start autoplay
//	s                       stop autoplay
//	g                       resend the view
func (h *GameHandler) Connect(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.WithError(err).Error("unable to upgrade")
		return
	}
	defer conn.Close()

	log := Log.WithField("table", e.ID.String())
	log.Debug("established ws connection")

	changed, unsubscribe := e.Table.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	x := tableExecutor{h: h, entry: e}
	errs := make(chan error)
	done := make(chan error, 1)
	go func() {
		err := x.writeLoop(ctx, conn, changed, errs)
		if err != nil {
			cancel()
			conn.Close()
		}
		done <- err
	}()

	err = x.readLoop(ctx, conn, errs)
	cancel()
	if werr := <-done; werr != nil {
		err = werr
	}
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.WithFields(logrus.Fields{"error": err}).Warn("error in ws loop")
		return
	}
	log.Debug("closed ws connection")
}
