package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/model"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned by delivery when no usable endpoint is set
var ErrNotConfigured = errors.New("gateway endpoint not configured")

// DeliveryError combines the failures of both transports
type DeliveryError struct {
	Post error
	Get  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("POST failed: %v; GET fallback failed: %v", e.Post, e.Get)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{e.Post, e.Get}
}

const (
	simulationMessage = "Solicitud recibida correctamente"
	fallbackNote      = "Enviado mediante GET porque la solicitud POST fue rechazada"
	deliveredMessage  = "Datos enviados correctamente"

	suggestionConfigure = "Configure GOOGLE_SCRIPT_URL con la URL de implementación del Google Apps Script (…/exec)"
	suggestionCORS      = "El backend rechazó la solicitud por CORS: implemente el script como aplicación web con acceso \"Cualquier persona\" y devuelva JSON desde doGet/doPost"
	suggestionNetwork   = "Verifique que la URL del script sea correcta, que la implementación esté activa y que el servidor tenga salida a Internet"
)

var corsMarkers = []string{
	"cors",
	"cross-origin",
	"failed to fetch",
	"networkerror",
	"access-control-allow-origin",
}

// Gateway delivers form submissions to the configured backend endpoint
type Gateway struct {
	cfg       Config
	transport Transport
	log       *zap.Logger
	now       func() time.Time
}

// New creates a gateway. cfg is read-only for the gateway's lifetime.
func New(cfg Config, transport Transport, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		cfg:       cfg,
		transport: transport,
		log:       log.With(zap.String("component", "gateway")),
		now:       time.Now,
	}
}

// SubmitAppointment delivers an appointment request. It never fails: when every transport
// fails the receipt is a *model.Simulated.
func (g *Gateway) SubmitAppointment(ctx context.Context, a model.Appointment) model.Receipt {
	return g.submit(ctx, a)
}

// SubmitPQRS delivers a PQRS record with the same guarantees as SubmitAppointment
func (g *Gateway) SubmitPQRS(ctx context.Context, p model.PQRS) model.Receipt {
	return g.submit(ctx, p)
}

func (g *Gateway) submit(ctx context.Context, s model.Submission) model.Receipt {
	data := s.Fields()
	delivered, err := g.deliver(ctx, s.Action(), data)
	if err == nil {
		return delivered
	}

	sim := &model.Simulated{
		ID:      fmt.Sprintf("sim-%s-%d", s.Kind(), g.now().UnixMilli()),
		Message: simulationMessage,
		Data:    data,
		Cause:   err,
	}
	g.log.Warn("Delivery failed, returning simulated receipt",
		zap.String("action", string(s.Action())),
		zap.String("simulation_id", sim.ID),
		zap.Error(err),
	)
	return sim
}

// TestConnection sends a testConnection action and reports the real outcome
func (g *Gateway) TestConnection(ctx context.Context) model.Result {
	if !g.cfg.Configured() {
		return model.Result{
			Success:    false,
			Message:    "La URL del Google Apps Script no está configurada",
			Suggestion: suggestionConfigure,
		}
	}

	delivered, err := g.deliver(ctx, model.ActionTestConnection, map[string]string{})
	if err != nil {
		g.log.Error("Connection test failed", zap.Error(err))
		return model.Result{
			Success:    false,
			Message:    "No fue posible conectar con el Google Apps Script",
			Error:      err.Error(),
			Suggestion: suggestionFor(err),
		}
	}
	return delivered.Result()
}

// Status reports the gateway configuration
func (g *Gateway) Status() model.Status {
	configured := g.cfg.Configured()
	url := NotConfiguredLabel
	if configured {
		url = g.cfg.URL
	}
	return model.Status{
		Configured:  configured,
		URL:         url,
		Environment: g.cfg.Environment,
		Ready:       configured,
	}
}

// deliver tries POST, then GET on the same URL. No retries beyond that.
func (g *Gateway) deliver(ctx context.Context, action model.Action, data map[string]string) (*model.Delivered, error) {
	if !g.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	env := model.Envelope{
		Action:    action,
		Data:      data,
		Timestamp: g.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	g.log.Debug("Sending via POST", zap.String("action", string(action)))
	body, postErr := g.transport.PostJSON(ctx, g.cfg.URL, env)
	if postErr == nil {
		return &model.Delivered{
			Method:  model.MethodPost,
			Message: messageOr(body, deliveredMessage),
			Body:    body,
		}, nil
	}

	g.log.Warn("POST failed, trying GET fallback", zap.String("action", string(action)), zap.Error(postErr))
	body, getErr := g.transport.GetQuery(ctx, g.cfg.URL, env)
	if getErr != nil {
		return nil, &DeliveryError{Post: postErr, Get: getErr}
	}

	return &model.Delivered{
		Method:  model.MethodGetFallback,
		Message: messageOr(body, deliveredMessage),
		Note:    fallbackNote,
		Body:    body,
	}, nil
}

// messageOr reads "message" when the backend answered with an object
func messageOr(body interface{}, fallback string) string {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return fallback
	}
	if msg, ok := obj["message"].(string); ok && msg != "" {
		return msg
	}
	return fallback
}

func suggestionFor(err error) string {
	text := strings.ToLower(err.Error())
	for _, marker := range corsMarkers {
		if strings.Contains(text, marker) {
			return suggestionCORS
		}
	}
	return suggestionNetwork
}
