// Package core provides the domain logic of the price results viewer.
//
// # Error Codes Reference
//
// This file maps technical errors to coded user messages. Users can quote
// the code when something goes wrong; the technical error is only logged.
//
// # Report Errors (REP001-REP099)
//
//	REP001 - No recipient: the destination address is empty
//	         Patterns: "report recipient is required"
//
//	REP002 - Rejected: the email service answered ok=false
//	         Patterns: "email service rejected report"
//
//	REP003 - Bad response: the email service reply could not be read
//	         Patterns: "decode email response"
//
//	REP004 - Unreachable: the email service could not be contacted
//	         Patterns: "post report"
//
// # Dataset Errors (DS001-DS099)
//
//	DS001 - Not found: no stored extraction matches
//	        Patterns: "dataset not found", "no rows in result set"
//
//	DS002 - Unreadable: the dataset source could not be read
//	        Patterns: "read dataset", "open dataset", "encode export"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Malformed request body
//	         Patterns: "invalid request body"
//
//	REQ002 - Request body too large
//	         Patterns: "request body too large"
//
// # Auth Errors (AUTH001-AUTH099)
//
//	AUTH001 - Missing API key, Patterns: "missing api key"
//	AUTH002 - Invalid API key, Patterns: "invalid api key"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests, Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check application logs for the
// original technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered specific before general.
var errorPatterns = []errorPattern{
	// Report
	{
		pattern: "report recipient is required",
		msg: UserMessage{
			Message: MsgRecipientRequired,
			Action:  "Escribe una dirección de correo y vuelve a enviar",
			Code:    "REP001",
		},
	},
	{
		pattern: "email service rejected report",
		msg: UserMessage{
			Message: "El servicio de correo rechazó el reporte",
			Action:  "Revisa el motivo indicado e inténtalo de nuevo",
			Code:    "REP002",
		},
	},
	{
		pattern: "decode email response",
		msg: UserMessage{
			Message: "La respuesta del servicio de correo no es válida",
			Action:  "Inténtalo de nuevo más tarde",
			Code:    "REP003",
		},
	},
	{
		pattern: "post report",
		msg: UserMessage{
			Message: "No se pudo contactar con el servicio de correo",
			Action:  "Comprueba la conexión e inténtalo de nuevo",
			Code:    "REP004",
		},
	},

	// Dataset
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "No se encontró la extracción solicitada",
			Action:  "Verifica el identificador de la extracción",
			Code:    "DS001",
		},
	},
	{
		pattern: "no rows in result set",
		msg: UserMessage{
			Message: "No se encontró la extracción solicitada",
			Action:  "Verifica el identificador de la extracción",
			Code:    "DS001",
		},
	},
	{
		pattern: "read dataset",
		msg: UserMessage{
			Message: "No se pudieron leer los datos de precios",
			Action:  "Comprueba el origen de datos configurado",
			Code:    "DS002",
		},
	},
	{
		pattern: "open dataset",
		msg: UserMessage{
			Message: "No se pudieron leer los datos de precios",
			Action:  "Comprueba el origen de datos configurado",
			Code:    "DS002",
		},
	},
	{
		pattern: "encode export",
		msg: UserMessage{
			Message: "No se pudo generar el archivo de exportación",
			Action:  "Inténtalo de nuevo o contacta con soporte",
			Code:    "DS002",
		},
	},

	// Request
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "La solicitud no es válida",
			Action:  "Revisa los datos enviados",
			Code:    "REQ001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "La solicitud es demasiado grande",
			Action:  "Reduce el tamaño de los datos enviados",
			Code:    "REQ002",
		},
	},

	// Auth
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "Falta la clave de API",
			Action:  "Incluye la cabecera X-API-Key",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "La clave de API no es válida",
			Action:  "Verifica la clave configurada",
			Code:    "AUTH002",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Demasiadas solicitudes",
			Action:  "Espera un momento antes de volver a intentarlo",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocurrió un error inesperado",
	Action:  "Inténtalo de nuevo o contacta con soporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 if none match.
//
// Example:
//
//	msg := MapError(errors.New("post report: connection refused"))
//	// msg.Code == "REP004"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Código: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown for it.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
