package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dd-go/internal/app"
	"dd-go/internal/form"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// stdin is shared so line prompts and password prompts read from one buffer
// when input is piped.
var stdin = bufio.NewReader(os.Stdin)

func prompt(w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo from a terminal, or a plain line
// otherwise.
func promptPassword(w io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(w, label)
	}
	fmt.Fprint(w, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

func flagOrPrompt(cmd *cobra.Command, name, label string) (string, error) {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v, nil
	}
	return prompt(cmd.ErrOrStderr(), label)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := flagOrPrompt(cmd, "email", "Email: ")
		if err != nil {
			return err
		}
		password, err := promptPassword(cmd.ErrOrStderr(), "Password: ")
		if err != nil {
			return err
		}

		return withApp(cmd, false, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Auth().Login(ctx, email, password); err != nil {
				return errors.New(a.Auth().State().Error)
			}
			u := a.Auth().User()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", u.Username, u.Email)
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		var r form.Registration
		var err error
		if r.Email, err = flagOrPrompt(cmd, "email", "Email: "); err != nil {
			return err
		}
		if r.Username, err = flagOrPrompt(cmd, "username", "Username: "); err != nil {
			return err
		}
		r.FullName, _ = cmd.Flags().GetString("full-name")
		if r.Password, err = promptPassword(cmd.ErrOrStderr(), "Password: "); err != nil {
			return err
		}
		if r.ConfirmPassword, err = promptPassword(cmd.ErrOrStderr(), "Confirm password: "); err != nil {
			return err
		}
		if err := r.Validate(); err != nil {
			return err
		}

		return withApp(cmd, false, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Auth().Register(ctx, r.Email, r.Username, r.Password, r.FullNamePtr()); err != nil {
				return errors.New(a.Auth().State().Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", a.Auth().User().Username)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Auth().Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.DDApp) error {
			out := cmd.OutOrStdout()
			st := a.Auth().State()
			if !st.IsAuthenticated {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			if st.User == nil {
				fmt.Fprintln(out, "Logged in (user details unavailable)")
				return nil
			}
			fmt.Fprintf(out, "%s <%s>", st.User.Username, st.User.Email)
			if st.User.FullName != nil {
				fmt.Fprintf(out, " %s", *st.User.FullName)
			}
			fmt.Fprintln(out)
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("username", "", "Username (at least 3 characters)")
	registerCmd.Flags().String("full-name", "", "Full name")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
