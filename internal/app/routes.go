package app

import (
	"net/http"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/handlers"
	"github.com/vancomm/minesweeper/internal/middleware"
)

func (a *App) buildHandler() http.Handler {
	scores := handlers.NewScoreHandler(a.scores)
	g := handlers.NewGameHandler(
		a.lobby,
		&a.config.JWT,
		a.config.Cookies,
		config.NewUpgrader(a.config.AllowedOrigins),
		handlers.GameOptions{
			BasePath:  a.config.BasePath,
			MinSide:   a.config.Board.MinSide,
			MaxSide:   a.config.Board.MaxSide,
			Step:      a.config.Autoplay.Step.Duration,
			Highlight: a.config.Autoplay.Highlight.Ptr(),
			Dead:      a.config.Autoplay.Dead.Ptr(),
		},
	)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scores", scores.Top)
	mux.HandleFunc("POST /api/scores", scores.Submit)
	mux.HandleFunc("GET /api/scores/recent", scores.Recent)

	mux.HandleFunc("POST /api/game", g.Create)
	mux.HandleFunc("GET /api/game/{id}", g.View)
	mux.HandleFunc("DELETE /api/game/{id}", g.Delete)
	mux.HandleFunc("POST /api/game/{id}/new", g.NewGame)
	mux.HandleFunc("POST /api/game/{id}/reveal", g.Act(game.LeftClick))
	mux.HandleFunc("POST /api/game/{id}/flag", g.Act(game.RightClick))
	mux.HandleFunc("POST /api/game/{id}/chord", g.Act(game.DoubleClick))
	mux.HandleFunc("POST /api/game/{id}/autoplay/start", g.StartAutoplay)
	mux.HandleFunc("POST /api/game/{id}/autoplay/stop", g.StopAutoplay)
	mux.HandleFunc("GET /api/game/{id}/connect", g.Connect)

	mux.HandleFunc("GET /api/status", a.status)

	var root http.Handler = mux
	if a.config.BasePath != "" {
		root = http.StripPrefix(a.config.BasePath, mux)
	}

	return middleware.Wrap(root,
		middleware.Cors(a.config.AllowedOrigins),
		middleware.Logging(),
		middleware.Recover(),
	)
}

func (a *App) status(w http.ResponseWriter, r *http.Request) {
	status := struct {
		OK     bool `json:"ok"`
		Tables int  `json:"tables"`
	}{OK: true, Tables: a.lobby.Len()}

	if err := a.scores.Ping(r.Context()); err != nil {
		Log.WithError(err).Warn("score store unreachable")
		status.OK = false
		handlers.SendJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	handlers.SendJSON(w, http.StatusOK, status)
}
