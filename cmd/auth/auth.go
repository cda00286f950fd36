package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dev-catena/lacos-sub000/internal/app"
	"github.com/dev-catena/lacos-sub000/internal/format"
	"github.com/dev-catena/lacos-sub000/internal/session"
)

// AuthCmd represents the auth command
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication and account commands",
	Long: `Authentication and account commands for Laços CLI.

This command group includes login with two-factor verification, registration,
logout, status and profile updates.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Laços",
	Long: `Sign in with an e-mail or phone and a password.

When the account has two-factor verification enabled the command asks for the
code sent by the backend. Answer "r" to request a new code or leave the line
empty to give up.`,
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out from Laços",
	Long:  "End the current session locally and on the backend",
	RunE:  runLogout,
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  "Revalidate the stored session and display the resulting state",
	RunE:  runStatus,
}

func runLogin(cmd *cobra.Command, args []string) error {
	identifier, _ := cmd.Flags().GetString("login")
	password, _ := cmd.Flags().GetString("password")
	code, _ := cmd.Flags().GetString("code")
	fixedCode := cmd.Flags().Changed("code")

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.ErrOrStderr()

	var err error
	if identifier == "" {
		if identifier, err = prompt(in, out, "E-mail ou telefone: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompt(in, out, "Senha: "); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	a, err := app.Launch(ctx, out)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.Session.SignIn(ctx, identifier, password)
	for res.Outcome == session.OutcomeTwoFactorRequired {
		if code == "" {
			if code, err = prompt(in, out, "Código de verificação (r para reenviar): "); err != nil {
				a.Session.CancelTwoFactor()
				return err
			}
		}

		switch strings.ToLower(code) {
		case "":
			a.Session.CancelTwoFactor()
			return errors.New("two-factor verification cancelled")
		case "r":
			res = a.Session.SignIn(ctx, identifier, password)
		default:
			verified := a.Session.CompleteTwoFactor(ctx, identifier, code)
			if verified.OK() {
				res = verified
			} else if fixedCode || !verified.Retryable {
				return resultError(verified)
			}
		}
		code = ""
	}

	if !res.OK() {
		return resultError(res)
	}

	a.Queue.Wait()
	state := a.State()
	if state.User != nil {
		format.PrintSuccess("Signed in as %s", state.User.Email)
	}
	return format.Print(state)
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := app.Launch(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.Session.Snapshot().Signed() {
		format.PrintInfo("Not signed in")
		return nil
	}

	a.Session.SignOut(ctx)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := app.Launch(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	return format.Print(a.State())
}

// prompt reads one trimmed line. A closed input is an error so scripted runs
// never spin on an empty answer.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func resultError(res session.Result) error {
	if res.Message != "" {
		return errors.New(res.Message)
	}
	if res.Err != nil {
		return res.Err
	}
	return fmt.Errorf("operation ended with %s", res.Outcome)
}

func init() {
	// Add login command flags
	loginCmd.Flags().StringP("login", "l", "", "E-mail or phone")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	loginCmd.Flags().String("code", "", "Two-factor code, for non-interactive use")

	// Add subcommands
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(registerCmd)
	AuthCmd.AddCommand(profileCmd)
}
