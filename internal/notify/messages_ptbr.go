package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, KeySignInFailed+".title", "Erro no login")
	message.SetString(lang, KeySignInFailed+".body", "%s")
	message.SetString(lang, KeyApprovalPending+".title", "Cadastro em análise")
	message.SetString(lang, KeyApprovalPending+".body", "Seu cadastro está sendo analisado. Você receberá um e-mail quando for aprovado.")
	message.SetString(lang, KeyActivationRequired+".title", "Conta não ativada")
	message.SetString(lang, KeyActivationRequired+".body", "Verifique seu e-mail para ativar a conta antes de entrar.")
	message.SetString(lang, KeyTwoFactorSent+".title", "Verificação em duas etapas")
	message.SetString(lang, KeyTwoFactorSent+".body", "Enviamos um código de 6 dígitos via %s.")
	message.SetString(lang, KeyTwoFactorInvalid+".title", "Código inválido")
	message.SetString(lang, KeyTwoFactorInvalid+".body", "O código informado é inválido ou expirou. Tente novamente.")
	message.SetString(lang, KeySignedOut+".title", "Sessão encerrada")
	message.SetString(lang, KeySignedOut+".body", "Você saiu da sua conta.")
	message.SetString(lang, KeyProfileUpdated+".title", "Perfil atualizado")
	message.SetString(lang, KeyProfileUpdated+".body", "Seus dados foram salvos.")
	message.SetString(lang, KeyDuplicateEmail+".title", "Email já cadastrado")
	message.SetString(lang, KeyDuplicateEmail+".body", "Este email já está em uso. Faça login ou use outro email.")
	message.SetString(lang, KeyDuplicateTaxID+".title", "CPF já cadastrado")
	message.SetString(lang, KeyDuplicateTaxID+".body", "Este CPF já está cadastrado. Faça login ou verifique o número informado.")
	message.SetString(lang, KeyDuplicateOther+".title", "Dados já cadastrados")
	message.SetString(lang, KeyDuplicateOther+".body", "%s")
	message.SetString(lang, KeyFieldInvalid+".title", "Verifique os dados")
	message.SetString(lang, KeyFieldInvalid+".body", "%s")
	message.SetString(lang, KeyRegisterFailed+".title", "Erro no cadastro")
	message.SetString(lang, KeyRegisterFailed+".body", "Não foi possível criar sua conta: %s")
	message.SetString(lang, KeyRegisterNeedsReview+".title", "Cadastro enviado")
	message.SetString(lang, KeyRegisterNeedsReview+".body", "Seu cadastro será analisado. Você receberá um e-mail quando for aprovado.")
	message.SetString(lang, KeyInviteLoginRequired+".title", "Login necessário")
	message.SetString(lang, KeyInviteLoginRequired+".body", "Faça login para entrar no grupo com o código %s.")
	message.SetString(lang, KeyInviteUndeliverable+".title", "Convite não aberto")
	message.SetString(lang, KeyInviteUndeliverable+".body", "Não foi possível abrir o convite %s. Use o código na tela de grupos.")
	message.SetString(lang, KeyPatientJoined+".title", "Bem-vindo")
	message.SetString(lang, KeyPatientJoined+".body", "Você entrou no grupo %s.")
	message.SetString(lang, KeyPatientJoinFailed+".title", "Código inválido")
	message.SetString(lang, KeyPatientJoinFailed+".body", "%s")
	message.SetString(lang, KeyBackendUnavailable+".title", "Erro de conexão")
	message.SetString(lang, KeyBackendUnavailable+".body", "Não foi possível falar com o servidor: %s")
}
