package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/robalobadob/vocabgames/internal/render"
	"github.com/robalobadob/vocabgames/internal/wordchain"
)

// chainCmd runs a word-chain duel against the bot
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Word-chain duel against the bot",
	Long: `Each word must start with the last letter of the previous one and may
not repeat. You have 15 seconds per turn; the bot gives up when it runs out
of words.

Commands:
  :new   restart the duel
  :q     quit`,
	RunE: runChain,
}

func runChain(cmd *cobra.Command, args []string) error {
	if !sess.LoggedIn() {
		return errors.New("the word chain needs an account: run `play login` first")
	}
	out := cmd.OutOrStdout()
	p := &chainPrinter{out: out}
	duel := wordchain.New(api,
		wordchain.WithLogger(logger),
		wordchain.WithNotify(p.print),
	)
	defer duel.Close()

	return playChain(cmd.Context(), duel, cmd.InOrStdin(), out)
}

// chainPrinter redraws the duel when something other than the countdown
// changes, and prints a short warning for each second in the danger zone.
type chainPrinter struct {
	mu   sync.Mutex
	out  io.Writer
	last wordchain.Snapshot
}

func (p *chainPrinter) print(s wordchain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tickOnly := s.State == p.last.State && s.Message == p.last.Message &&
		len(s.Log) == len(p.last.Log) && s.Busy == p.last.Busy
	p.last = s
	if !tickOnly {
		fmt.Fprintln(p.out, render.Chain(s, theme())+"\n")
		return
	}
	if s.Danger() {
		fmt.Fprintf(p.out, "\n%s %ds left\n> ", render.TimerBar(s.TimeLeft, wordchain.TurnSeconds, 15), s.TimeLeft)
	}
}

// playChain reads words from in and plays them until the player quits.
func playChain(ctx context.Context, duel *wordchain.Duel, in io.Reader, out io.Writer) error {
	if err := duel.Start(ctx); err != nil {
		return err
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		switch line {
		case ":q", ":quit":
			return nil
		case ":new":
			if err := duel.Start(ctx); err != nil {
				fmt.Fprintln(out, err)
			}
			continue
		}

		err := duel.Submit(ctx, line)
		switch {
		case errors.Is(err, wordchain.ErrMatchOver):
			fmt.Fprintln(out, "The duel is over. Type :new to play again or :q to quit.")
		case errors.Is(err, wordchain.ErrBusy):
			fmt.Fprintln(out, "Wait for the bot to answer.")
		case err != nil:
			logger.Debug().Err(err).Msg("submit")
		}
	}
}
