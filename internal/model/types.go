package model

// Action names the operation the backend script should run
type Action string

const (
	ActionSubmitAppointment Action = "submitAppointment"
	ActionSubmitPQRS        Action = "submitPQRS"
	ActionTestConnection    Action = "testConnection"
)

// Method records which transport produced a result
type Method string

const (
	MethodPost        Method = "POST"
	MethodGetFallback Method = "GET_FALLBACK"
	MethodSimulation  Method = "SIMULATION"
)

// Envelope is the wire shape sent to the backend, both as POST body and as GET query
type Envelope struct {
	Action    Action            `json:"action"`
	Data      map[string]string `json:"data"`
	Timestamp string            `json:"timestamp"`
}

// Submission is a form record the gateway can deliver
type Submission interface {
	Action() Action
	// Kind is the short label used in simulated ids ("cita", "pqrs")
	Kind() string
	// Fields flattens the record into the destination's field names
	Fields() map[string]string
}

// Appointment is an appointment request ("cita")
type Appointment struct {
	Nombre        string
	Email         string
	Telefono      string
	TipoDocumento string
	Documento     string
	Especialidad  string
	FechaCita     string
	HoraCita      string
	EPS           string
	Mensaje       string
}

func (a Appointment) Action() Action { return ActionSubmitAppointment }
func (a Appointment) Kind() string   { return "cita" }

func (a Appointment) Fields() map[string]string {
	f := map[string]string{
		"nombre":       a.Nombre,
		"email":        a.Email,
		"telefono":     a.Telefono,
		"especialidad": a.Especialidad,
		"fecha_cita":   a.FechaCita,
	}
	setIfPresent(f, "tipo_documento", a.TipoDocumento)
	setIfPresent(f, "documento", a.Documento)
	setIfPresent(f, "hora_cita", a.HoraCita)
	setIfPresent(f, "eps", a.EPS)
	setIfPresent(f, "mensaje", a.Mensaje)
	return f
}

// PQRSType is the category of a PQRS record
type PQRSType string

const (
	PQRSPeticion     PQRSType = "peticion"
	PQRSQueja        PQRSType = "queja"
	PQRSReclamo      PQRSType = "reclamo"
	PQRSSugerencia   PQRSType = "sugerencia"
	PQRSFelicitacion PQRSType = "felicitacion"
)

// PQRS is a petition, complaint, claim, suggestion or compliment
type PQRS struct {
	Tipo        PQRSType
	Nombre      string
	Email       string
	Telefono    string
	Documento   string
	Asunto      string
	Descripcion string
}

func (p PQRS) Action() Action { return ActionSubmitPQRS }
func (p PQRS) Kind() string   { return "pqrs" }

func (p PQRS) Fields() map[string]string {
	f := map[string]string{
		"tipo_solicitud": string(p.Tipo),
		"nombre":         p.Nombre,
		"email":          p.Email,
		"asunto":         p.Asunto,
		"descripcion":    p.Descripcion,
	}
	setIfPresent(f, "telefono", p.Telefono)
	setIfPresent(f, "documento", p.Documento)
	return f
}

func setIfPresent(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// Result is the JSON shape returned to callers
type Result struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	MethodUsed Method      `json:"methodUsed,omitempty"`
	ID         string      `json:"id,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Note       string      `json:"note,omitempty"`
	Simulation bool        `json:"simulation,omitempty"`
	Error      string      `json:"error,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Receipt is the outcome of a form submission. It is either *Delivered or *Simulated.
type Receipt interface {
	Result() Result
	receipt()
}

// Delivered means the backend acknowledged the submission
type Delivered struct {
	Method  Method
	Message string
	Note    string
	// Body is the decoded backend response; any JSON value
	Body interface{}
}

func (d *Delivered) receipt() {}

func (d *Delivered) Result() Result {
	return Result{
		Success:    true,
		Message:    d.Message,
		MethodUsed: d.Method,
		Data:       d.Body,
		Note:       d.Note,
	}
}

// Simulated means every transport failed and the submission was acknowledged locally only
type Simulated struct {
	ID      string
	Message string
	Data    map[string]string
	// Cause is the delivery error that triggered the simulation
	Cause error
}

func (s *Simulated) receipt() {}

func (s *Simulated) Result() Result {
	return Result{
		Success:    true,
		Message:    s.Message,
		MethodUsed: MethodSimulation,
		ID:         s.ID,
		Data:       s.Data,
		Simulation: true,
	}
}

// Status describes the gateway configuration
type Status struct {
	Configured  bool   `json:"configured"`
	URL         string `json:"url"`
	Environment string `json:"environment"`
	Ready       bool   `json:"ready"`
}
