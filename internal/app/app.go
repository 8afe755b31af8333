package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/lobby"
	"github.com/vancomm/minesweeper/internal/repository"
)

var Log = logrus.New()

const shutdownTimeout = 30 * time.Second

type App struct {
	config *config.Config
	lobby  *lobby.Lobby
	scores repository.Scores
}

func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// Start serves until ctx is done or the listener fails, then shuts the
// server down and releases the lobby and the score store.
func (a *App) Start(ctx context.Context) error {
	scores, err := OpenScores(ctx, a.config.Scores)
	if err != nil {
		return fmt.Errorf("unable to open score store: %w", err)
	}
	a.scores = scores
	defer a.scores.Close()

	a.lobby = lobby.New()
	defer a.lobby.Close()

	server := &http.Server{
		Addr:    a.config.Addr,
		Handler: a.buildHandler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	Log.Infof("ready to serve @ %s%s", a.config.Addr, a.config.BasePath)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.lobby.Janitor(gCtx, a.config.Session.SweepInterval.Duration, a.config.Session.TTL.Duration)
	})

	return g.Wait()
}
