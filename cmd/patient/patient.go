package patient

import (
	"github.com/spf13/cobra"

	"github.com/dev-catena/lacos-sub000/internal/app"
	"github.com/dev-catena/lacos-sub000/internal/format"
)

// PatientCmd represents the patient command
var PatientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Patient session commands",
	Long: `Patient session commands for Laços CLI.

A patient joins a care group with the code shared by a caregiver. The patient
session is independent of the account session.`,
}

var joinCmd = &cobra.Command{
	Use:   "join <code>",
	Short: "Join a group as a patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.Launch(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		if res := a.Session.JoinPatient(ctx, args[0]); !res.OK() {
			return res.Err
		}
		return format.Print(a.State().Patient)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the patient session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Launch(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		state := a.State()
		if state.Patient == nil {
			format.PrintInfo("No patient session")
			return nil
		}
		return format.Print(state.Patient)
	},
}

var leaveCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the patient session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.Launch(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Session.LeavePatient(ctx); err != nil {
			return err
		}
		format.PrintSuccess("Patient session ended")
		return nil
	},
}

func init() {
	PatientCmd.AddCommand(joinCmd)
	PatientCmd.AddCommand(statusCmd)
	PatientCmd.AddCommand(leaveCmd)
}
