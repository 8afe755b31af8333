// Command autoplay plays one game in the terminal with the autoplay driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/autoplay"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
)

var log = logrus.New()

func main() {
	var (
		difficulty = flag.String("difficulty", mines.Easy, "easy, medium, hard or custom")
		rows       = flag.Int("rows", 0, "rows of a custom board")
		cols       = flag.Int("cols", 0, "columns of a custom board")
		step       = flag.Duration("step", 250*time.Millisecond, "time per autoplay step")
		seed       = flag.Uint64("seed", 0, "random seed, 0 picks one")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	for _, l := range []*logrus.Logger{log, autoplay.Log, game.Log} {
		l.SetFormatter(&logrus.TextFormatter{ForceColors: true})
		if *verbose {
			l.SetLevel(logrus.DebugLevel)
		} else {
			l.SetLevel(logrus.WarnLevel)
		}
	}

	d, err := mines.ParseDifficulty(*difficulty, *rows, *cols)
	if err != nil {
		log.Fatal(err)
	}
	timing, err := autoplay.NewTiming(*step, nil, nil)
	if err != nil {
		log.Fatal(err)
	}

	if *seed == 0 {
		*seed = new(maphash.Hash).Sum64()
	}
	table, err := game.NewTable(d, rand.New(rand.NewPCG(*seed, *seed)), game.SystemClock)
	if err != nil {
		log.Fatal(err)
	}
	driver := autoplay.New(table, rand.New(rand.NewPCG(*seed, ^*seed)))
	table.SetAutoplay(driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	changed, unsubscribe := table.Subscribe()
	defer unsubscribe()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				render(table.Snapshot())
			}
		}
	}()

	fmt.Printf("%s (%d mines), seed %d\n", d.Size(), d.Mines, *seed)
	reason, err := driver.Run(ctx, timing)
	stop()
	<-printed
	if err != nil {
		log.Fatal(err)
	}

	snap := table.Snapshot()
	render(snap)
	fmt.Printf("%s after %ds (%s)\n", snap.State, snap.ElapsedSeconds, reason)
}

func render(snap game.Snapshot) {
	fmt.Print("\033[H\033[2J")
	fmt.Printf("%s  flags %d/%d  %ds\n", snap.State, snap.FlagCount, snap.MineCount, snap.ElapsedSeconds)
	fmt.Print(snap.Board.String())
}
