// Package messages holds the locally defined text of the error page.
//
// Everything here is safe to render without trust: link parameters are never
// used as format strings. The only link-derived value that can appear is a
// trusted service name passed as an argument.
//
// Import rules:
//   - CAN import: internal/constants, std lib, x/text
//   - MUST NOT import: internal/trust, internal/route, internal/web
package messages

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"

	"github.com/mrz1836/trustlink/internal/constants"
)

// Message keys. Keys are the English source text.
const (
	keyBackToPlace  = "Back to %s"
	keyBack         = "Back"
	keyBackToLogin  = "Back to Login Page"
	keyTheService   = "the service"
	keyDefaultTitle = "Something went wrong"
	keyDefaultBody  = "An error occurred."
	keyGuestChannel = "Your guest account has no channels assigned. Please contact an administrator."
	keyTownSquare   = constants.DefaultChannelName
)

// entry is the title and message key pair of one error type.
type entry struct {
	title   string
	message string
}

// entries maps each error type to its English source keys.
//
//nolint:gochecknoglobals // Read-only lookup table
var entries = map[constants.ErrorPageType]entry{
	constants.ErrorPageLocalUsersLoginDisabled: {
		title:   "Login Disabled",
		message: "Login with email or username has been disabled. Please contact your System Administrator.",
	},
	constants.ErrorPageOAuthAccessDenied: {
		title:   "Authorization Error",
		message: "You must authorize the application to log in with %s.",
	},
	constants.ErrorPageOAuthMissingCode: {
		title:   "Login Failed",
		message: "The service provider %s did not provide an authorization code in the redirect URL.",
	},
	constants.ErrorPageOAuthInvalidParam: {
		title:   "OAuth Parameter Error",
		message: "The OAuth request to %s contained an invalid parameter.",
	},
	constants.ErrorPageOAuthInvalidRedirectURL: {
		title:   "OAuth Parameter Error",
		message: "The redirect URL sent to %s does not match a registered callback URL.",
	},
	constants.ErrorPagePageNotFound: {
		title:   "Page Not Found",
		message: "The page you were trying to reach does not exist.",
	},
	constants.ErrorPagePermalinkNotFound: {
		title:   "Message Not Found",
		message: "The message was deleted, or it is in a channel you do not have access to.",
	},
	constants.ErrorPageTeamNotFound: {
		title:   "Team Not Found",
		message: "The team you're requesting is private or does not exist. Please contact your Administrator for an invitation.",
	},
	constants.ErrorPageChannelNotFound: {
		title:   "Channel Not Found",
		message: "The channel you're requesting is private or does not exist. Please contact an Administrator to be added to the channel.",
	},
	constants.ErrorPageMaxFreeUsersReached: {
		title:   "Maximum Number of Users Reached",
		message: "This workspace has reached its user limit. Contact your administrator for more information.",
	},
	constants.ErrorPageCloudArchived: {
		title:   "Message Archived",
		message: "This message is in a channel that was archived because the workspace exceeded its plan limits.",
	},
}

// takesService reports whether the message key of t has a %s for the service.
func takesService(t constants.ErrorPageType) bool {
	switch t {
	case constants.ErrorPageOAuthAccessDenied,
		constants.ErrorPageOAuthMissingCode,
		constants.ErrorPageOAuthInvalidParam,
		constants.ErrorPageOAuthInvalidRedirectURL:
		return true
	default:
		return false
	}
}

// translation pairs a source key with its translated text.
type translation struct {
	key  string
	text string
}

// spanish translates every source key.
//
//nolint:gochecknoglobals // Read-only translation table
var spanish = []translation{
	{keyBackToPlace, "Volver a %s"},
	{keyBack, "Volver"},
	{keyBackToLogin, "Volver a la página de inicio de sesión"},
	{keyTheService, "el servicio"},
	{keyDefaultTitle, "Algo salió mal"},
	{keyDefaultBody, "Se produjo un error."},
	{keyGuestChannel, "Tu cuenta de invitado no tiene canales asignados. Contacta a un administrador."},
	{keyTownSquare, "Plaza del pueblo"},
	{"Login Disabled", "Inicio de sesión deshabilitado"},
	{"Login with email or username has been disabled. Please contact your System Administrator.", "El inicio de sesión con correo o nombre de usuario está deshabilitado. Contacta a tu administrador del sistema."},
	{"Authorization Error", "Error de autorización"},
	{"You must authorize the application to log in with %s.", "Debes autorizar la aplicación para iniciar sesión con %s."},
	{"Login Failed", "Error de inicio de sesión"},
	{"The service provider %s did not provide an authorization code in the redirect URL.", "El proveedor de servicio %s no envió un código de autorización en la URL de redirección."},
	{"OAuth Parameter Error", "Error de parámetro OAuth"},
	{"The OAuth request to %s contained an invalid parameter.", "La solicitud OAuth a %s contenía un parámetro no válido."},
	{"The redirect URL sent to %s does not match a registered callback URL.", "La URL de redirección enviada a %s no coincide con ninguna URL de retorno registrada."},
	{"Page Not Found", "Página no encontrada"},
	{"The page you were trying to reach does not exist.", "La página que intentas abrir no existe."},
	{"Message Not Found", "Mensaje no encontrado"},
	{"The message was deleted, or it is in a channel you do not have access to.", "El mensaje fue eliminado o está en un canal al que no tienes acceso."},
	{"Team Not Found", "Equipo no encontrado"},
	{"The team you're requesting is private or does not exist. Please contact your Administrator for an invitation.", "El equipo que buscas es privado o no existe. Contacta a tu administrador para recibir una invitación."},
	{"Channel Not Found", "Canal no encontrado"},
	{"The channel you're requesting is private or does not exist. Please contact an Administrator to be added to the channel.", "El canal que buscas es privado o no existe. Contacta a un administrador para que te agregue al canal."},
	{"Maximum Number of Users Reached", "Se alcanzó el número máximo de usuarios"},
	{"This workspace has reached its user limit. Contact your administrator for more information.", "Este espacio de trabajo alcanzó su límite de usuarios. Contacta a tu administrador para más información."},
	{"Message Archived", "Mensaje archivado"},
	{"This message is in a channel that was archived because the workspace exceeded its plan limits.", "Este mensaje está en un canal que se archivó porque el espacio de trabajo superó los límites de su plan."},
}

// translations lists the non-source languages and their tables.
//
//nolint:gochecknoglobals // Read-only translation table
var translations = map[language.Tag][]translation{
	language.Spanish: spanish,
}

// sharedCatalog is built once on first use.
//
//nolint:gochecknoglobals // Process-wide init-once catalog
var sharedCatalog = sync.OnceValue(func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, table := range translations {
		for _, tr := range table {
			if err := b.SetString(tag, tr.key, tr.text); err != nil {
				panic(fmt.Sprintf("messages: invalid %s translation for %q: %v", tag, tr.key, err))
			}
		}
	}
	return b
})
