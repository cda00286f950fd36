package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dev-catena/lacos-sub000/internal/app"
	"github.com/dev-catena/lacos-sub000/internal/format"
	"github.com/dev-catena/lacos-sub000/internal/models"
	"github.com/dev-catena/lacos-sub000/internal/session"
)

// registerCmd creates a new account
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Laços account",
	Long: `Create a new account from flags, a YAML form file, or both. Flags
override values read from the file.

When the backend rejects a field, --save-form writes the submitted form back
(without the password) so it can be corrected and sent again.`,
	RunE: runRegister,
}

var registerFlags = map[string]func(p *models.RegisterPayload) *string{
	"name":         func(p *models.RegisterPayload) *string { return &p.Name },
	"last-name":    func(p *models.RegisterPayload) *string { return &p.LastName },
	"email":        func(p *models.RegisterPayload) *string { return &p.Email },
	"password":     func(p *models.RegisterPayload) *string { return &p.Password },
	"phone":        func(p *models.RegisterPayload) *string { return &p.Phone },
	"birth-date":   func(p *models.RegisterPayload) *string { return &p.BirthDate },
	"gender":       func(p *models.RegisterPayload) *string { return &p.Gender },
	"cpf":          func(p *models.RegisterPayload) *string { return &p.CPF },
	"city":         func(p *models.RegisterPayload) *string { return &p.City },
	"neighborhood": func(p *models.RegisterPayload) *string { return &p.Neighborhood },
	"hourly-rate":  func(p *models.RegisterPayload) *string { return &p.HourlyRate },
	"availability": func(p *models.RegisterPayload) *string { return &p.Availability },
	"crm":          func(p *models.RegisterPayload) *string { return &p.CRM },
}

func runRegister(cmd *cobra.Command, args []string) error {
	payload, err := registerPayload(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.Launch(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.Session.SignUp(ctx, payload)
	switch res.Outcome {
	case session.OutcomeSuccess:
		return format.Print(a.State())
	case session.OutcomeApprovalPending, session.OutcomeActivationRequired:
		return nil
	case session.OutcomeValidationError:
		if path, _ := cmd.Flags().GetString("save-form"); path != "" {
			if saved, ok := a.Session.SavedForm(); ok {
				if err := writeForm(path, saved); err != nil {
					return err
				}
				format.PrintInfo("Form saved to %s", path)
			}
		}
	}
	return resultError(res)
}

func registerPayload(cmd *cobra.Command) (models.RegisterPayload, error) {
	var payload models.RegisterPayload
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return payload, fmt.Errorf("read form: %w", err)
		}
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return payload, fmt.Errorf("parse form: %w", err)
		}
	}

	for name, target := range registerFlags {
		if cmd.Flags().Changed(name) {
			value, _ := cmd.Flags().GetString(name)
			*target(&payload) = value
		}
	}
	if cmd.Flags().Changed("profile") {
		profile, _ := cmd.Flags().GetString("profile")
		payload.Profile = models.ProfileKind(strings.ToLower(profile))
	}
	return payload, nil
}

func writeForm(path string, form models.RegisterPayload) error {
	form.Password = ""
	data, err := yaml.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write form: %w", err)
	}
	return nil
}

func addRegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "YAML form file")
	cmd.Flags().String("save-form", "", "Write the form back here when a field is rejected")
	cmd.Flags().String("profile", "", "caregiver, professional_caregiver, doctor or patient")
	for name := range registerFlags {
		cmd.Flags().String(name, "", strings.ReplaceAll(name, "-", " "))
	}
}

func init() {
	addRegisterFlags(registerCmd)
}
