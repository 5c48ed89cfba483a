package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/model"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/schema"

	"go.uber.org/zap"
)

// Gateway is the delivery side of the form service
type Gateway interface {
	SubmitAppointment(ctx context.Context, a model.Appointment) model.Receipt
	SubmitPQRS(ctx context.Context, p model.PQRS) model.Receipt
	TestConnection(ctx context.Context) model.Result
	Status() model.Status
}

// Validator checks a form value against a named schema
type Validator interface {
	ValidateForm(ctx context.Context, name string, value interface{}) error
}

type FormService struct {
	validator   Validator
	gateway     Gateway
	log         *zap.Logger
	specialties []string
}

func NewFormService(validator Validator, gateway Gateway, log *zap.Logger) *FormService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FormService{
		validator: validator,
		gateway:   gateway,
		log:       log,
	}
}

// SetSpecialties restricts appointment requests to the given specialty names.
// Without it any especialidad the schema accepts goes through.
func (s *FormService) SetSpecialties(names []string) {
	s.specialties = names
}

// checkSpecialty reports an especialidad field error when the name is not offered
func (s *FormService) checkSpecialty(name string) error {
	if len(s.specialties) == 0 {
		return nil
	}
	for _, known := range s.specialties {
		if strings.EqualFold(known, name) {
			return nil
		}
	}
	return &schema.FieldErrors{Fields: map[string]string{
		"especialidad": "is not an offered specialty",
	}}
}

// CitaForm is the appointment form as posted by the website
type CitaForm struct {
	Nombre        string `json:"nombre,omitempty"`
	Email         string `json:"email,omitempty"`
	Telefono      string `json:"telefono,omitempty"`
	TipoDocumento string `json:"tipoDocumento,omitempty"`
	Documento     string `json:"documento,omitempty"`
	Especialidad  string `json:"especialidad,omitempty"`
	FechaCita     string `json:"fechaCita,omitempty"`
	HoraCita      string `json:"horaCita,omitempty"`
	EPS           string `json:"eps,omitempty"`
	Mensaje       string `json:"mensaje,omitempty"`
}

// PQRSForm is the PQRS form as posted by the website
type PQRSForm struct {
	Tipo        string `json:"tipo,omitempty"`
	Nombre      string `json:"nombre,omitempty"`
	Email       string `json:"email,omitempty"`
	Telefono    string `json:"telefono,omitempty"`
	Documento   string `json:"documento,omitempty"`
	Asunto      string `json:"asunto,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
}

// SubmitAppointment validates the form and hands it to the gateway. The only error is a
// validation error; delivery problems come back as a simulated receipt.
func (s *FormService) SubmitAppointment(ctx context.Context, form CitaForm) (model.Receipt, error) {
	form = trimCita(form)
	if err := s.validator.ValidateForm(ctx, schema.FormCita, form); err != nil {
		return nil, fmt.Errorf("invalid appointment form: %w", err)
	}
	if err := s.checkSpecialty(form.Especialidad); err != nil {
		return nil, fmt.Errorf("invalid appointment form: %w", err)
	}

	receipt := s.gateway.SubmitAppointment(ctx, model.Appointment{
		Nombre:        form.Nombre,
		Email:         form.Email,
		Telefono:      form.Telefono,
		TipoDocumento: form.TipoDocumento,
		Documento:     form.Documento,
		Especialidad:  form.Especialidad,
		FechaCita:     form.FechaCita,
		HoraCita:      form.HoraCita,
		EPS:           form.EPS,
		Mensaje:       form.Mensaje,
	})
	s.logReceipt(ctx, "cita", receipt)
	return receipt, nil
}

// SubmitPQRS validates the form and hands it to the gateway
func (s *FormService) SubmitPQRS(ctx context.Context, form PQRSForm) (model.Receipt, error) {
	form = trimPQRS(form)
	if err := s.validator.ValidateForm(ctx, schema.FormPQRS, form); err != nil {
		return nil, fmt.Errorf("invalid PQRS form: %w", err)
	}

	receipt := s.gateway.SubmitPQRS(ctx, model.PQRS{
		Tipo:        model.PQRSType(form.Tipo),
		Nombre:      form.Nombre,
		Email:       form.Email,
		Telefono:    form.Telefono,
		Documento:   form.Documento,
		Asunto:      form.Asunto,
		Descripcion: form.Descripcion,
	})
	s.logReceipt(ctx, "pqrs", receipt)
	return receipt, nil
}

func (s *FormService) TestConnection(ctx context.Context) model.Result {
	return s.gateway.TestConnection(ctx)
}

func (s *FormService) Status() model.Status {
	return s.gateway.Status()
}

func (s *FormService) logReceipt(ctx context.Context, form string, receipt model.Receipt) {
	fields := []zap.Field{zap.String("form", form)}
	if id := SubmissionIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("submission_id", id))
	}

	switch r := receipt.(type) {
	case *model.Delivered:
		s.log.Info("Form delivered", append(fields, zap.String("method", string(r.Method)))...)
	case *model.Simulated:
		// The visitor is told the request was received even though the backend never saw it.
		s.log.Warn("Form not delivered, simulated receipt returned",
			append(fields, zap.String("simulation_id", r.ID), zap.Error(r.Cause))...)
	}
}
