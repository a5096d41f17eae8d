package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/domain/doctor"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
	"github.com/clinicroute/clinicroute/internal/service"
)

type DoctorHandler struct {
	doctorSvc *service.DoctorService
	log       *zap.Logger
}

func NewDoctorHandler(doctorSvc *service.DoctorService, log *zap.Logger) *DoctorHandler {
	return &DoctorHandler{doctorSvc: doctorSvc, log: log}
}

type createDoctorRequest struct {
	Name              string `json:"name" binding:"required"`
	Specialization    string `json:"specialization" binding:"required"`
	Sector            string `json:"sector" binding:"required"`
	MaxRegularSlots   int    `json:"max_regular_slots" binding:"required"`
	MaxEmergencySlots int    `json:"max_emergency_slots" binding:"required"`
}

type slotView struct {
	Time   string `json:"time"`
	Booked bool   `json:"booked"`
}

type doctorResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Specialization    string     `json:"specialization"`
	Sector            string     `json:"sector"`
	MaxRegularSlots   int        `json:"max_regular_slots"`
	MaxEmergencySlots int        `json:"max_emergency_slots"`
	RegularSlots      []slotView `json:"regular_slots"`
	EmergencySlots    []slotView `json:"emergency_slots"`
	TriageDepth       int        `json:"triage_depth"`
}

func toDoctorResponse(d *doctor.Doctor) doctorResponse {
	maxRegular, maxEmergency := d.Capacities()
	return doctorResponse{
		ID:                d.ID,
		Name:              d.Name,
		Specialization:    d.Specialization,
		Sector:            d.Sector,
		MaxRegularSlots:   maxRegular,
		MaxEmergencySlots: maxEmergency,
		RegularSlots:      toSlotViews(d.Slots(schedule.PoolRegular)),
		EmergencySlots:    toSlotViews(d.Slots(schedule.PoolEmergency)),
		TriageDepth:       d.TriageDepth(),
	}
}

func toSlotViews(slots []schedule.Slot) []slotView {
	out := make([]slotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotView{Time: s.Time, Booked: s.Booked})
	}
	return out
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.doctorSvc.Register(c.Request.Context(), &service.RegisterDoctorCommand{
		Name:              req.Name,
		Specialization:    req.Specialization,
		Sector:            req.Sector,
		MaxRegularSlots:   req.MaxRegularSlots,
		MaxEmergencySlots: req.MaxEmergencySlots,
	}, callerEntry(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toDoctorResponse(d))
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.doctorSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toDoctorResponse(d))
}

func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.doctorSvc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]doctorResponse, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, toDoctorResponse(d))
	}
	respondOK(c, out)
}

func (h *DoctorHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.doctorSvc.Delete(c.Request.Context(), id, callerEntry(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": id})
}

type addSlotRequest struct {
	Time      string `json:"time" binding:"required"`
	Emergency bool   `json:"emergency"`
}

func (h *DoctorHandler) AddSlot(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req addSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.doctorSvc.AddSlot(c.Request.Context(), id, req.Time, req.Emergency); err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, gin.H{"doctor_id": id, "time": req.Time, "emergency": req.Emergency})
}

// Availability answers the time-only question, or the date-and-time
// question when a date query parameter is given.
func (h *DoctorHandler) Availability(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	t := c.Query("time")
	date := c.Query("date")

	available, err := h.doctorSvc.Availability(c.Request.Context(), id, date, t)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"doctor_id": id, "time": t, "date": date, "available": available})
}

func (h *DoctorHandler) FreeSlots(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	regular, emergency, err := h.doctorSvc.FreeSlots(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"regular": regular, "emergency": emergency})
}
