package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, KeySignInFailed+".title", "Sign-in failed")
	message.SetString(lang, KeySignInFailed+".body", "%s")
	message.SetString(lang, KeyApprovalPending+".title", "Account under review")
	message.SetString(lang, KeyApprovalPending+".body", "Your registration is being reviewed. You will get an e-mail once it is approved.")
	message.SetString(lang, KeyActivationRequired+".title", "Account not activated")
	message.SetString(lang, KeyActivationRequired+".body", "Check your e-mail to activate the account before signing in.")
	message.SetString(lang, KeyTwoFactorSent+".title", "Two-step verification")
	message.SetString(lang, KeyTwoFactorSent+".body", "We sent a 6-digit code via %s.")
	message.SetString(lang, KeyTwoFactorInvalid+".title", "Invalid code")
	message.SetString(lang, KeyTwoFactorInvalid+".body", "The code is invalid or has expired. Try again.")
	message.SetString(lang, KeySignedOut+".title", "Signed out")
	message.SetString(lang, KeySignedOut+".body", "You left your account.")
	message.SetString(lang, KeyProfileUpdated+".title", "Profile updated")
	message.SetString(lang, KeyProfileUpdated+".body", "Your details were saved.")
	message.SetString(lang, KeyDuplicateEmail+".title", "E-mail already registered")
	message.SetString(lang, KeyDuplicateEmail+".body", "This e-mail is already in use. Sign in or use another e-mail.")
	message.SetString(lang, KeyDuplicateTaxID+".title", "CPF already registered")
	message.SetString(lang, KeyDuplicateTaxID+".body", "This CPF is already registered. Sign in or check the number.")
	message.SetString(lang, KeyDuplicateOther+".title", "Already registered")
	message.SetString(lang, KeyDuplicateOther+".body", "%s")
	message.SetString(lang, KeyFieldInvalid+".title", "Check your details")
	message.SetString(lang, KeyFieldInvalid+".body", "%s")
	message.SetString(lang, KeyRegisterFailed+".title", "Registration failed")
	message.SetString(lang, KeyRegisterFailed+".body", "Could not create your account: %s")
	message.SetString(lang, KeyRegisterNeedsReview+".title", "Registration sent")
	message.SetString(lang, KeyRegisterNeedsReview+".body", "Your registration will be reviewed. You will get an e-mail once it is approved.")
	message.SetString(lang, KeyInviteLoginRequired+".title", "Sign-in required")
	message.SetString(lang, KeyInviteLoginRequired+".body", "Sign in to join the group with code %s.")
	message.SetString(lang, KeyInviteUndeliverable+".title", "Invitation not opened")
	message.SetString(lang, KeyInviteUndeliverable+".body", "Could not open invitation %s. Enter the code on the groups screen.")
	message.SetString(lang, KeyPatientJoined+".title", "Welcome")
	message.SetString(lang, KeyPatientJoined+".body", "You joined the group %s.")
	message.SetString(lang, KeyPatientJoinFailed+".title", "Invalid code")
	message.SetString(lang, KeyPatientJoinFailed+".body", "%s")
	message.SetString(lang, KeyBackendUnavailable+".title", "Connection error")
	message.SetString(lang, KeyBackendUnavailable+".body", "Could not reach the server: %s")
}
