// cmd/play/main.go
//
// Terminal front end for the vocabulary mini-games.
// Responsibilities:
//   - Load the client profile (.env, YAML, environment) and build the API
//     client and the session shared by every subcommand.
//   - Keep the session cookies in session.yaml next to the profile so a
//     login survives between runs.
//   - Wire the subcommands: wordle, chain, stats, account and settings.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/robalobadob/vocabgames/internal/apiclient"
	"github.com/robalobadob/vocabgames/internal/config"
	"github.com/robalobadob/vocabgames/internal/render"
	"github.com/robalobadob/vocabgames/internal/session"
)

var (
	profilePath string
	apiBase     string
	verbose     bool

	// Set by PersistentPreRunE.
	cfg    *config.Client
	logger zerolog.Logger
	api    *apiclient.Client
	sess   *session.Session
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Wordle and word-chain duels against the vocabgames server",
	Long: `play is a terminal client for the vocabgames backend.

Subcommands:
  wordle   - guess the secret word in six attempts
  chain    - word-chain duel against the bot, 15 seconds per turn
  stats    - show your Wordle statistics
  login    - open a session (register creates an account first)
  settings - show or change language and theme`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()

		var err error
		cfg, err = config.LoadClient(profilePath)
		if err != nil {
			return err
		}
		if apiBase != "" {
			cfg.APIBase = apiBase
		}

		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = zerolog.WarnLevel
		}
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()

		api, err = apiclient.New(cfg.APIBase,
			apiclient.WithTimeout(cfg.Timeout),
			apiclient.WithRateLimit(cfg.RPS, max(1, cfg.RPS)),
			apiclient.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		restoreSession()

		sess = session.New(api, apiclient.Settings{RandomWordLang: cfg.Lang, Theme: cfg.Theme}, logger)
		if err := sess.Bootstrap(cmd.Context()); err != nil {
			// The games still work anonymously.
			logger.Warn().Err(err).Msg("could not load session")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", config.DefaultProfilePath(), "YAML profile with api_base, lang, theme, word_length")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "API base URL (overrides profile and API_BASE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(wordleCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(settingsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	// Tokens may have been rotated or revoked even when the command failed.
	saveSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// restoreSession loads the cookies saved by the previous run.
func restoreSession() {
	saved, err := config.LoadSession(config.SessionPath(profilePath))
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring saved session")
		return
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for name, value := range saved {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	api.RestoreSession(cookies)
}

// saveSession writes the current cookies for the next run.
func saveSession() {
	if api == nil {
		return
	}
	cookies := make(map[string]string)
	for _, c := range api.SessionCookies() {
		cookies[c.Name] = c.Value
	}
	if err := config.SaveSession(config.SessionPath(profilePath), cookies); err != nil {
		logger.Warn().Err(err).Msg("failed to save session")
	}
}

// theme is the palette for the session's current theme.
func theme() render.Theme { return render.ThemeFor(sess.Theme()) }
