package models

import "time"

// ErrorResponse is the error body returned by the backend on non-2xx replies.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Status  string              `json:"status,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// PatientSession is the lightweight persisted record of a patient who joined a
// caregiving group with a code instead of a full account.
type PatientSession struct {
	GroupID         string    `json:"groupId" yaml:"group_id"`
	GroupName       string    `json:"groupName" yaml:"group_name"`
	AccompaniedName string    `json:"accompaniedName,omitempty" yaml:"accompanied_name,omitempty"`
	LoginTime       time.Time `json:"loginTime" yaml:"login_time"`
}

// PatientJoinResponse is the reply of the patient join-code endpoint.
type PatientJoinResponse struct {
	Success bool `json:"success"`
	Group   struct {
		ID              FlexibleID `json:"id"`
		Name            string     `json:"name"`
		AccompaniedName string     `json:"accompanied_name"`
	} `json:"group"`
	Message string `json:"message,omitempty"`
}
