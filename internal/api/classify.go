package api

import (
	"sort"
	"strings"

	"github.com/dev-catena/lacos-sub000/internal/utils"
)

var taxIDFields = map[string]bool{"cpf": true, "tax_id": true, "document": true}

// duplicateMarkers are the backend phrasings of a uniqueness violation, in
// English and Portuguese.
var duplicateMarkers = []string{
	"already been taken",
	"already registered",
	"already exists",
	"já está em uso",
	"já cadastrado",
	"já está cadastrado",
	"já existe",
}

// ClassifyValidation turns a 422 field error map into a tagged validation
// error. Uniqueness conflicts win over generic field errors; among them an
// e-mail conflict wins over a CPF conflict.
func ClassifyValidation(fields map[string][]string, fallback string) *utils.ValidationError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := fieldPriority(names[i]), fieldPriority(names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})

	var best *utils.ValidationError
	for _, name := range names {
		for _, msg := range fields[name] {
			kind := classifyField(name, msg)
			if best == nil || rank(kind) < rank(best.Kind) {
				best = utils.NewValidationError(kind, name, msg)
			}
		}
	}

	if best == nil {
		best = utils.NewValidationError(utils.GenericField, "", fallback)
	}
	if best.Message == "" {
		best.Message = fallback
	}
	best.Fields = fields
	return best
}

func classifyField(field, message string) utils.ValidationKind {
	if !isDuplicate(message) {
		return utils.GenericField
	}
	name := strings.ToLower(field)
	switch {
	case strings.Contains(name, "email"):
		return utils.DuplicateEmail
	case taxIDFields[name]:
		return utils.DuplicateTaxID
	default:
		return utils.DuplicateOther
	}
}

func isDuplicate(message string) bool {
	msg := strings.ToLower(message)
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func fieldPriority(field string) int {
	name := strings.ToLower(field)
	switch {
	case strings.Contains(name, "email"):
		return 0
	case taxIDFields[name]:
		return 1
	default:
		return 2
	}
}

func rank(kind utils.ValidationKind) int {
	switch kind {
	case utils.DuplicateEmail:
		return 0
	case utils.DuplicateTaxID:
		return 1
	case utils.DuplicateOther:
		return 2
	default:
		return 3
	}
}
