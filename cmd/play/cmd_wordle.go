package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/robalobadob/vocabgames/internal/render"
	"github.com/robalobadob/vocabgames/internal/wordle"
)

var wordleLength int

// wordleCmd plays Wordle rounds until the player quits
var wordleCmd = &cobra.Command{
	Use:   "wordle",
	Short: "Guess the secret word in six attempts",
	Long: `Type a guess and press enter. Tiles show which letters are in the
right place (correct), in the word (present) or absent (miss).

Letters can also be typed a few at a time:
  +LETTERS    append letters to the current row
  -           erase the last letter
  !           submit the current row

Commands:
  :again      start a new round
  :len N      start a new round with N letters (5, 6 or 7)
  :q          quit`,
	RunE: runWordle,
}

func init() {
	wordleCmd.Flags().IntVarP(&wordleLength, "length", "n", 0, "Word length (default: profile word_length)")
}

func runWordle(cmd *cobra.Command, args []string) error {
	length := wordleLength
	if length == 0 {
		length = cfg.WordLength
	}

	var opts []wordle.Option
	opts = append(opts, wordle.WithLogger(logger))
	if sess.LoggedIn() {
		opts = append(opts, wordle.WithStats(api))
	}
	round := wordle.New(api, sess, opts...)
	defer func() {
		round.Close()
		round.Wait()
	}()

	return playWordle(cmd.Context(), round, length, cmd.InOrStdin(), cmd.OutOrStdout())
}

// playWordle runs the read-guess-render loop on in/out.
func playWordle(ctx context.Context, round *wordle.Round, length int, in io.Reader, out io.Writer) error {
	show := func() { fmt.Fprintln(out, render.Wordle(round.Snapshot(), theme())+"\n") }

	if err := round.Start(ctx, length); err != nil {
		if errors.Is(err, wordle.ErrInvalidLength) {
			return err
		}
		logger.Debug().Err(err).Msg("start failed")
	}
	show()

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			continue
		case line == ":q" || line == ":quit":
			return nil
		case line == ":again":
			if err := round.Start(ctx, length); err != nil {
				logger.Debug().Err(err).Msg("start failed")
			}
			show()
			continue
		case strings.HasPrefix(line, ":len"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, ":len")))
			if err != nil || !lo.Contains(wordle.Lengths, n) {
				fmt.Fprintln(out, "Word length must be 5, 6 or 7.")
				continue
			}
			length = n
			if err := round.Start(ctx, length); err != nil {
				logger.Debug().Err(err).Msg("start failed")
			}
			show()
			continue
		}

		if round.State().Terminal() {
			fmt.Fprintln(out, "Round over. Type :again for a new word or :q to quit.")
			continue
		}
		if round.State() == wordle.Blocked {
			fmt.Fprintln(out, "No secret word. Type :again to retry.")
			continue
		}

		switch {
		case line == "-" || line == wordle.KeyBackspace:
			round.Backspace()
			show()
			continue
		case strings.HasPrefix(line, "+"):
			for _, ch := range line[1:] {
				if !round.Type(ch) {
					fmt.Fprintf(out, "Ignored %q.\n", ch)
				}
			}
			show()
			continue
		case line == "!":
			if err := round.Submit(ctx); err != nil {
				logger.Debug().Err(err).Msg("submit")
			}
			show()
			continue
		}

		if err := round.SetGuess(line); err != nil {
			switch {
			case errors.Is(err, wordle.ErrGuessTooLong):
				fmt.Fprintf(out, "The word must be %d letters long.\n", length)
			case errors.Is(err, wordle.ErrInvalidLetter):
				fmt.Fprintln(out, "Only letters from the keyboard are allowed.")
			default:
				fmt.Fprintln(out, err)
			}
			continue
		}
		if err := round.Submit(ctx); err != nil {
			logger.Debug().Err(err).Msg("submit")
		}
		show()
	}
}
