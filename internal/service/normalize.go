package service

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
)

type contextKey string

const submissionIDKey contextKey = "submissionID"

// NewSubmissionID returns a sortable id used to correlate a form post across log lines
func NewSubmissionID() string {
	return ulid.Make().String()
}

// WithSubmissionID stores the correlation id on the context
func WithSubmissionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, submissionIDKey, id)
}

// SubmissionIDFromContext extracts the correlation id from the context
func SubmissionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(submissionIDKey).(string); ok {
		return id
	}
	return ""
}

func trimCita(f CitaForm) CitaForm {
	f.Nombre = collapse(f.Nombre)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Telefono = phone(f.Telefono)
	f.TipoDocumento = strings.ToUpper(strings.TrimSpace(f.TipoDocumento))
	f.Documento = strings.TrimSpace(f.Documento)
	f.Especialidad = collapse(f.Especialidad)
	f.FechaCita = strings.TrimSpace(f.FechaCita)
	f.HoraCita = strings.TrimSpace(f.HoraCita)
	f.EPS = collapse(f.EPS)
	f.Mensaje = strings.TrimSpace(f.Mensaje)
	return f
}

func trimPQRS(f PQRSForm) PQRSForm {
	f.Tipo = strings.ToLower(strings.TrimSpace(f.Tipo))
	f.Nombre = collapse(f.Nombre)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Telefono = phone(f.Telefono)
	f.Documento = strings.TrimSpace(f.Documento)
	f.Asunto = collapse(f.Asunto)
	f.Descripcion = strings.TrimSpace(f.Descripcion)
	return f
}

// collapse trims and squeezes inner whitespace runs to one space
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// phone drops the separators people type in phone numbers. Anything else is kept
// so the schema pattern can reject it.
func phone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '.', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
