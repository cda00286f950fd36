package models

import (
	"strings"
)

// LoginRequest represents a login request. Login is an e-mail or a CPF.
type LoginRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// LoginResponse represents the reply of both the login and the two-factor
// verification endpoints.
type LoginResponse struct {
	Success           bool   `json:"success"`
	RequiresTwoFactor bool   `json:"requires_2fa"`
	Method            string `json:"method,omitempty"`
	Token             string `json:"token,omitempty"`
	User              *User  `json:"user,omitempty"`
	Message           string `json:"message,omitempty"`
	Error             string `json:"error,omitempty"`
}

// TwoFactorVerifyRequest exchanges a code for a session.
type TwoFactorVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RegisterPayload is the form submitted on the registration screen.
type RegisterPayload struct {
	Name      string      `json:"name" yaml:"name"`
	LastName  string      `json:"lastName,omitempty" yaml:"last_name,omitempty"`
	Email     string      `json:"email" yaml:"email"`
	Password  string      `json:"password" yaml:"password"`
	Phone     string      `json:"phone,omitempty" yaml:"phone,omitempty"`
	BirthDate string      `json:"birthDate,omitempty" yaml:"birth_date,omitempty"`
	Gender    string      `json:"gender,omitempty" yaml:"gender,omitempty"`
	Profile   ProfileKind `json:"profile,omitempty" yaml:"profile,omitempty"`
	CPF       string      `json:"cpf,omitempty" yaml:"cpf,omitempty"`

	City             string `json:"city,omitempty" yaml:"city,omitempty"`
	Neighborhood     string `json:"neighborhood,omitempty" yaml:"neighborhood,omitempty"`
	FormationDetails string `json:"formation_details,omitempty" yaml:"formation_details,omitempty"`
	HourlyRate       string `json:"hourly_rate,omitempty" yaml:"hourly_rate,omitempty"`
	Availability     string `json:"availability,omitempty" yaml:"availability,omitempty"`

	CRM                string `json:"crm,omitempty" yaml:"crm,omitempty"`
	MedicalSpecialtyID string `json:"medical_specialty_id,omitempty" yaml:"medical_specialty_id,omitempty"`
}

// RegisterRequest is the wire body of the registration endpoint.
type RegisterRequest struct {
	Name                 string      `json:"name"`
	Email                string      `json:"email"`
	Password             string      `json:"password"`
	PasswordConfirmation string      `json:"password_confirmation"`
	Phone                *string     `json:"phone"`
	BirthDate            string      `json:"birth_date,omitempty"`
	Gender               string      `json:"gender,omitempty"`
	Profile              ProfileKind `json:"profile"`
	CPF                  string      `json:"cpf,omitempty"`

	City               string   `json:"city,omitempty"`
	Neighborhood       string   `json:"neighborhood,omitempty"`
	FormationDetails   string   `json:"formation_details,omitempty"`
	HourlyRate         *float64 `json:"hourly_rate,omitempty"`
	Availability       string   `json:"availability,omitempty"`
	CRM                string   `json:"crm,omitempty"`
	MedicalSpecialtyID string   `json:"medical_specialty_id,omitempty"`
}

// RegisterResponse is the success body of the registration endpoint.
type RegisterResponse struct {
	Success          bool   `json:"success"`
	Token            string `json:"token,omitempty"`
	User             *User  `json:"user,omitempty"`
	RequiresApproval bool   `json:"requires_approval,omitempty"`
	Status           string `json:"status,omitempty"`
	Message          string `json:"message,omitempty"`
}

// PendingApproval reports whether the account was created but awaits review.
func (r RegisterResponse) PendingApproval() bool {
	return r.RequiresApproval || r.Status == "pending_approval"
}

// FullName joins first and last name the way the backend stores it.
func (p RegisterPayload) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.Name) + " " + strings.TrimSpace(p.LastName))
}
