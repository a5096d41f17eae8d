package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/service"
)

type PatientHandler struct {
	patientSvc *service.PatientService
	log        *zap.Logger
}

func NewPatientHandler(patientSvc *service.PatientService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{patientSvc: patientSvc, log: log}
}

type createPatientRequest struct {
	Name   string `json:"name" binding:"required"`
	Sector string `json:"sector" binding:"required"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.patientSvc.Register(c.Request.Context(), req.Name, req.Sector, callerEntry(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.patientSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.patientSvc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patients)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.patientSvc.Delete(c.Request.Context(), id, callerEntry(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": id})
}

type addHistoryRequest struct {
	Record string `json:"record" binding:"required"`
}

func (h *PatientHandler) AddHistory(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req addHistoryRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.patientSvc.AddHistory(c.Request.Context(), id, req.Record, callerEntry(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, gin.H{"patient_id": id})
}

func (h *PatientHandler) History(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	records, err := h.patientSvc.History(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"patient_id": id, "records": records})
}
