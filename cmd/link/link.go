package link

import (
	"fmt"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"

	"github.com/dev-catena/lacos-sub000/internal/app"
	"github.com/dev-catena/lacos-sub000/internal/config"
	"github.com/dev-catena/lacos-sub000/internal/deeplink"
	"github.com/dev-catena/lacos-sub000/internal/format"
	"github.com/dev-catena/lacos-sub000/internal/session"
	"github.com/dev-catena/lacos-sub000/internal/utils"
)

// LinkCmd represents the link command
var LinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Group invitation link commands",
	Long: `Group invitation link commands for Laços CLI.

This command group resolves invitation links, opens them against the current
session and prints a share QR code for a group code.`,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <uri>",
	Short: "Extract the invitation code from a link",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var openCmd = &cobra.Command{
	Use:   "open <uri>",
	Short: "Open an invitation link as the app would",
	Long: `Hand the link to the session core. With a session the invitation is
delivered to the groups screen; without one it waits for sign-in.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

var qrCmd = &cobra.Command{
	Use:   "qr <code>",
	Short: "Print a share QR code for a group code",
	Args:  cobra.ExactArgs(1),
	RunE:  runQR,
}

type resolution struct {
	URI  string `json:"uri"`
	Code string `json:"code,omitempty"`
	OK   bool   `json:"ok"`
}

func resolver() *deeplink.Resolver {
	cfg := config.Get()
	return deeplink.NewResolver(deeplink.Rules{
		Scheme:      cfg.DeepLink.Scheme,
		Hosts:       cfg.DeepLink.Hosts,
		DevPrefixes: cfg.DeepLink.DevPrefixes,
	})
}

func runResolve(cmd *cobra.Command, args []string) error {
	code, ok := resolver().Resolve(args[0])
	if !ok {
		format.PrintWarning("No invitation in %s", args[0])
	}
	return format.Print(resolution{URI: args[0], Code: code, OK: ok})
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := app.Launch(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.HandleLink(ctx, args[0]); !ok {
		return fmt.Errorf("no invitation in %s", args[0])
	}

	identifier, _ := cmd.Flags().GetString("login")
	password, _ := cmd.Flags().GetString("password")
	if identifier != "" && !a.Session.Snapshot().Signed() {
		res := a.Session.SignIn(ctx, identifier, password)
		if res.Outcome == session.OutcomeTwoFactorRequired {
			a.Session.CancelTwoFactor()
			return fmt.Errorf("account needs two-factor verification, sign in with 'lacos auth login' first")
		}
		if !res.OK() {
			return fmt.Errorf("sign-in failed: %s", res.Message)
		}
	}

	a.Queue.Wait()
	return format.Print(a.Navigator.Calls())
}

// ShareURL builds the public link for code.
func ShareURL(base, code string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + code
}

func runQR(cmd *cobra.Command, args []string) error {
	code := utils.NormalizeInviteCode(args[0])
	if err := utils.ValidateInviteCode(code); err != nil {
		return err
	}
	url := ShareURL(config.Get().DeepLink.ShareBaseURL, code)
	qrterminal.GenerateHalfBlock(url, qrterminal.L, cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}

func init() {
	openCmd.Flags().StringP("login", "l", "", "Sign in with this e-mail or phone before delivering")
	openCmd.Flags().StringP("password", "p", "", "Password for --login")

	LinkCmd.AddCommand(resolveCmd)
	LinkCmd.AddCommand(openCmd)
	LinkCmd.AddCommand(qrCmd)
}
