package notify

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. Each key has a ".title" and a ".body" entry in the catalogs.
const (
	KeySignInFailed        = "auth.sign_in_failed"
	KeyApprovalPending     = "auth.approval_pending"
	KeyActivationRequired  = "auth.activation_required"
	KeyTwoFactorSent       = "auth.two_factor_sent"
	KeyTwoFactorInvalid    = "auth.two_factor_invalid"
	KeySignedOut           = "auth.signed_out"
	KeyProfileUpdated      = "auth.profile_updated"
	KeyDuplicateEmail      = "register.duplicate_email"
	KeyDuplicateTaxID      = "register.duplicate_tax_id"
	KeyDuplicateOther      = "register.duplicate_other"
	KeyFieldInvalid        = "register.field_invalid"
	KeyRegisterFailed      = "register.failed"
	KeyRegisterNeedsReview = "register.pending_approval"
	KeyInviteLoginRequired = "invite.login_required"
	KeyInviteUndeliverable = "invite.undeliverable"
	KeyPatientJoined       = "patient.joined"
	KeyPatientJoinFailed   = "patient.join_failed"
	KeyBackendUnavailable  = "backend.unavailable"
)

// DefaultLocale is used when the configured locale cannot be parsed.
var DefaultLocale = language.MustParse("pt-BR")

var supported = language.NewMatcher([]language.Tag{DefaultLocale, language.English})

// Localizer renders catalog keys into events.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
	now     func() time.Time
}

// NewLocalizer picks the closest supported locale for name.
func NewLocalizer(name string) *Localizer {
	tag := DefaultLocale
	if parsed, err := language.Parse(name); err == nil {
		matched, _, _ := supported.Match(parsed)
		base, _ := matched.Base()
		if base.String() == "en" {
			tag = language.English
		}
	}
	return &Localizer{tag: tag, printer: message.NewPrinter(tag), now: time.Now}
}

// Tag returns the locale in use.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Sprintf renders a single catalog entry.
func (l *Localizer) Sprintf(key message.Reference, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Event builds an event for key. args feed the body template.
func (l *Localizer) Event(kind Kind, key string, args ...any) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Key:       key,
		Headline:  l.printer.Sprintf(key + ".title"),
		Detail:    l.printer.Sprintf(key+".body", args...),
		CreatedAt: l.now(),
	}
}
