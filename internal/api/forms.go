package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/model"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/schema"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/service"
)

// SubmissionIDHeader carries the correlation id of a form post back to the client
const SubmissionIDHeader = "X-Submission-ID"

const maxFormBytes = 64 << 10

func (d Dependencies) submitAppointment(w http.ResponseWriter, r *http.Request) {
	var form service.CitaForm
	if !d.decodeForm(w, r, &form) {
		return
	}

	id := service.NewSubmissionID()
	ctx := service.WithSubmissionID(r.Context(), id)

	receipt, err := d.Forms.SubmitAppointment(ctx, form)
	if err != nil {
		d.writeFormError(w, err)
		return
	}
	d.writeReceipt(w, id, receipt)
}

func (d Dependencies) submitPQRS(w http.ResponseWriter, r *http.Request) {
	var form service.PQRSForm
	if !d.decodeForm(w, r, &form) {
		return
	}

	id := service.NewSubmissionID()
	ctx := service.WithSubmissionID(r.Context(), id)

	receipt, err := d.Forms.SubmitPQRS(ctx, form)
	if err != nil {
		d.writeFormError(w, err)
		return
	}
	d.writeReceipt(w, id, receipt)
}

func (d Dependencies) decodeForm(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return false
	}
	return true
}

func (d Dependencies) writeFormError(w http.ResponseWriter, err error) {
	var fe *schema.FieldErrors
	if errors.As(err, &fe) {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Code:    "validation_failed",
			Message: "Revise los campos del formulario",
			Fields:  fe.Fields,
		}, d.Log)
		return
	}
	WriteError(w, http.StatusInternalServerError, "submit_failed", err.Error(), d.Log)
}

// writeReceipt answers 201 for both delivered and simulated receipts; the body says which
func (d Dependencies) writeReceipt(w http.ResponseWriter, id string, receipt model.Receipt) {
	w.Header().Set(SubmissionIDHeader, id)
	writeJSON(w, http.StatusCreated, receipt.Result())
}
