package api

import (
	"net/http"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/auth"

	"go.uber.org/zap"
)

func (d Dependencies) gatewayStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.Forms.Status())
}

// gatewayTest runs a real connection test; 502 tells the operator the backend is unreachable
func (d Dependencies) gatewayTest(w http.ResponseWriter, r *http.Request) {
	d.Log.Info("Gateway connection test requested", zap.String("subject", auth.GetSubject(r.Context())))

	result := d.Forms.TestConnection(r.Context())
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}
