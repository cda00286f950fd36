package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ProfileKind is the account profile chosen at registration.
type ProfileKind string

const (
	ProfileCaregiver             ProfileKind = "caregiver"
	ProfileProfessionalCaregiver ProfileKind = "professional_caregiver"
	ProfileDoctor                ProfileKind = "doctor"
	ProfilePatient               ProfileKind = "patient"
)

// FlexibleID accepts ids encoded either as JSON numbers or strings.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// MarshalJSON keeps numeric ids numeric on the way back out.
func (id FlexibleID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// User is the authenticated identity record returned by the backend.
type User struct {
	ID      FlexibleID  `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Email   string      `json:"email" yaml:"email"`
	Profile ProfileKind `json:"profile,omitempty" yaml:"profile,omitempty"`
	Phone   string      `json:"phone,omitempty" yaml:"phone,omitempty"`
	CPF     string      `json:"cpf,omitempty" yaml:"cpf,omitempty"`
	City    string      `json:"city,omitempty" yaml:"city,omitempty"`

	// Extra holds backend attributes without a dedicated field so they
	// survive a persist/load round trip.
	Extra map[string]any `json:"-" yaml:"-"`
}

type userFields User

// UnmarshalJSON implements json.Unmarshaler, keeping unknown attributes in Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	var fields userFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range knownUserKeys {
		delete(all, key)
	}
	*u = User(fields)
	if len(all) > 0 {
		u.Extra = all
	}
	return nil
}

// MarshalJSON implements json.Marshaler, flattening Extra next to the known fields.
func (u User) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(userFields(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return known, nil
	}
	merged := make(map[string]any, len(u.Extra)+len(knownUserKeys))
	for k, v := range u.Extra {
		merged[k] = v
	}
	var fields map[string]any
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

var knownUserKeys = []string{"id", "name", "email", "profile", "phone", "cpf", "city"}

// Merge returns a copy of u with patch applied on top. Patch keys follow the
// JSON field names; unknown keys land in Extra.
func (u User) Merge(patch map[string]any) (User, error) {
	base, err := json.Marshal(u)
	if err != nil {
		return User{}, fmt.Errorf("encode user: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(base, &fields); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return User{}, fmt.Errorf("encode patch: %w", err)
	}
	var out User
	if err := json.Unmarshal(merged, &out); err != nil {
		return User{}, fmt.Errorf("apply patch: %w", err)
	}
	return out, nil
}
