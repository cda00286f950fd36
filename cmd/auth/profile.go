package auth

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dev-catena/lacos-sub000/internal/app"
	"github.com/dev-catena/lacos-sub000/internal/format"
)

// profileCmd updates the stored identity
var profileCmd = &cobra.Command{
	Use:   "profile key=value...",
	Short: "Update the signed-in profile",
	Long: `Merge attributes into the signed-in user and persist them.

Example:
  lacos auth profile name="Ana Souza" city=Recife`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	patch, err := parsePatch(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.Launch(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if res := a.Session.UpdateProfile(ctx, patch); !res.OK() {
		return resultError(res)
	}
	return format.Print(a.State().User)
}

func parsePatch(args []string) (map[string]any, error) {
	patch := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		patch[key] = value
	}
	return patch, nil
}
