package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/vocabgames/internal/apiclient"
	"github.com/robalobadob/vocabgames/internal/render"
	"github.com/robalobadob/vocabgames/internal/session"
)

var (
	accountUser string
	accountPass string

	settingsLang  string
	settingsTheme string
	settingsSave  bool
)

// registerCmd creates an account and logs in
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, pass, err := credentials(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := api.Register(cmd.Context(), user, pass); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		return login(cmd, user, pass)
	},
}

// loginCmd opens a session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, pass, err := credentials(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return login(cmd, user, pass)
	},
}

// logoutCmd revokes the refresh token
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sess.LoggedIn() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		if err := api.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		sess.Clear()
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

// statsCmd prints the Wordle statistics
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your Wordle statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := api.Stats(cmd.Context())
		if apiclient.IsUnauthorized(err) {
			return errors.New("statistics need an account: run `play login` first")
		}
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Stats(st, theme()))
		return nil
	},
}

// settingsCmd shows or changes the preferences
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the secret-word language and the theme",
	Long: `Without flags, prints the current settings.

Languages: ` + strings.Join(session.Languages, ", ") + `
Themes:    ` + strings.Join(session.Themes, ", ") + `

Changes are saved on the server when logged in. --save also writes them to
the local profile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if settingsLang != "" {
			if err := sess.SetLanguage(ctx, settingsLang); err != nil {
				return err
			}
		}
		if settingsTheme != "" {
			if err := sess.SetTheme(ctx, settingsTheme); err != nil {
				return err
			}
		}
		if settingsSave {
			cfg.Lang = sess.Language()
			cfg.Theme = sess.Theme()
			if err := cfg.Save(profilePath); err != nil {
				return err
			}
			logger.Info().Str("path", profilePath).Msg("profile saved")
		}

		who := "anonymous"
		if u, ok := sess.User(); ok {
			who = u.Username
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user:     %s\nlanguage: %s\ntheme:    %s\n", who, sess.Language(), sess.Theme())
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&accountUser, "user", "u", "", "Username (default: profile username)")
		c.Flags().StringVarP(&accountPass, "password", "p", "", "Password (or PLAY_PASSWORD; prompted when empty)")
	}
	settingsCmd.Flags().StringVar(&settingsLang, "lang", "", "Secret-word language")
	settingsCmd.Flags().StringVar(&settingsTheme, "theme", "", "Colour theme")
	settingsCmd.Flags().BoolVar(&settingsSave, "save", false, "Also write the settings to the profile")
}

func login(cmd *cobra.Command, user, pass string) error {
	ctx := cmd.Context()
	if err := api.Login(ctx, user, pass); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := sess.Bootstrap(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", user)
	return nil
}

// credentials resolves username and password from flags, profile,
// environment and finally a prompt on in.
func credentials(in io.Reader, out io.Writer) (string, string, error) {
	user := accountUser
	if user == "" {
		user = cfg.Username
	}
	pass := accountPass
	if pass == "" {
		pass = os.Getenv("PLAY_PASSWORD")
	}

	r := bufio.NewReader(in)
	prompt := func(label string) (string, error) {
		fmt.Fprint(out, label)
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	var err error
	if user == "" {
		if user, err = prompt("username: "); err != nil {
			return "", "", err
		}
	}
	if pass == "" {
		if pass, err = prompt("password: "); err != nil {
			return "", "", err
		}
	}
	if user == "" || pass == "" {
		return "", "", errors.New("username and password are required")
	}
	return user, pass, nil
}
