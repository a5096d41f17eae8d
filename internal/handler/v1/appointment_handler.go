package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/service"
)

type AppointmentHandler struct {
	appointSvc *service.AppointmentService
	routingSvc *service.RoutingService
	log        *zap.Logger
}

func NewAppointmentHandler(appointSvc *service.AppointmentService, routingSvc *service.RoutingService, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{appointSvc: appointSvc, routingSvc: routingSvc, log: log}
}

type bookRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	Time      string    `json:"time" binding:"required"`
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.appointSvc.BookRegular(c.Request.Context(), req.DoctorID, req.PatientID, req.Date, req.Time, callerEntry(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, app)
}

type emergencyRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Urgency   int       `json:"urgency" binding:"required"`
}

// Emergency runs the triage flow. A 202 means the patient is waiting in
// the queue; a 201 carries the appointment that was booked, which may
// belong to a more urgent waiter.
func (h *AppointmentHandler) Emergency(c *gin.Context) {
	var req emergencyRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.appointSvc.RequestEmergency(c.Request.Context(), req.DoctorID, req.PatientID, req.Urgency, callerEntry(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if app == nil {
		c.JSON(http.StatusAccepted, APIResponse[gin.H]{
			Data:    gin.H{"patient_id": req.PatientID, "queued": true},
			Message: "no emergency slot free; patient queued by urgency",
		})
		return
	}
	respondCreated(c, app)
}

type nearestRequest struct {
	PatientID      uuid.UUID `json:"patient_id" binding:"required"`
	Sector         string    `json:"sector" binding:"required"`
	Specialization string    `json:"specialization" binding:"required"`
	Date           string    `json:"date" binding:"required"`
	Time           string    `json:"time" binding:"required"`
}

// Nearest books the closest available doctor with the requested
// specialization, ranked by shortest path from the patient's sector.
func (h *AppointmentHandler) Nearest(c *gin.Context) {
	var req nearestRequest
	if !bindJSON(c, &req) {
		return
	}

	app, distance, err := h.routingSvc.BookNearest(c.Request.Context(), req.PatientID, req.Sector, req.Specialization, req.Date, req.Time, callerEntry(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, APIResponse[gin.H]{Data: gin.H{
		"appointment": app,
		"distance":    distance,
	}})
}

type rankRequest struct {
	Sector         string `form:"sector" binding:"required"`
	Specialization string `form:"specialization" binding:"required"`
}

// Rank lists doctors of a specialization ordered by travel distance
// from the given sector, without booking anything.
func (h *AppointmentHandler) Rank(c *gin.Context) {
	var req rankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "sector and specialization query parameters are required")
		return
	}

	ranked, err := h.routingSvc.Rank(c.Request.Context(), req.Sector, req.Specialization)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type rankedView struct {
		DoctorID  uuid.UUID `json:"doctor_id"`
		Name      string    `json:"name"`
		Sector    string    `json:"sector"`
		Distance  int       `json:"distance"`
		Reachable bool      `json:"reachable"`
	}
	out := make([]rankedView, 0, len(ranked))
	for _, rd := range ranked {
		out = append(out, rankedView{
			DoctorID:  rd.Doctor.ID,
			Name:      rd.Doctor.Name,
			Sector:    rd.Doctor.Sector,
			Distance:  rd.Distance,
			Reachable: rd.Reachable(),
		})
	}
	respondOK(c, out)
}

type cancelRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req cancelRequest
	if !bindJSON(c, &req) {
		return
	}

	cancelled, err := h.appointSvc.Cancel(c.Request.Context(), req.DoctorID, req.PatientID, callerEntry(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"cancelled": cancelled})
}

type missedRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
}

func (h *AppointmentHandler) MarkMissed(c *gin.Context) {
	var req missedRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.appointSvc.MarkMissed(c.Request.Context(), req.DoctorID, req.PatientID, callerEntry(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, app)
}

type rebookRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	Time      string    `json:"time" binding:"required"`
}

func (h *AppointmentHandler) Rebook(c *gin.Context) {
	var req rebookRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.appointSvc.Rebook(c.Request.Context(), req.DoctorID, req.PatientID, req.Date, req.Time, callerEntry(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, app)
}

func (h *AppointmentHandler) ListForDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	apps, err := h.appointSvc.ListForDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, apps)
}

func (h *AppointmentHandler) ListForPatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	apps, err := h.appointSvc.ListForPatient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, apps)
}
