package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicroute/clinicroute/internal/domain/doctor"
	"github.com/clinicroute/clinicroute/internal/domain/location"
	"github.com/clinicroute/clinicroute/internal/domain/patient"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
	"github.com/clinicroute/clinicroute/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, schedule.ErrAppointmentNotFound),
		errors.Is(err, schedule.ErrNoMissedAppointment):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, schedule.ErrSlotOverlap),
		errors.Is(err, schedule.ErrAppointmentExists),
		errors.Is(err, schedule.ErrPoolFull),
		errors.Is(err, doctor.ErrDoctorAlreadyExists),
		errors.Is(err, patient.ErrPatientAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, schedule.ErrSlotUnavailable),
		errors.Is(err, service.ErrNoDoctorAvailable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "UNAVAILABLE",
		})

	case errors.Is(err, schedule.ErrInvalidTime),
		errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, schedule.ErrInvalidUrgency),
		errors.Is(err, location.ErrInvalidSector),
		errors.Is(err, location.ErrNegativeWeight),
		errors.Is(err, doctor.ErrInvalidName),
		errors.Is(err, doctor.ErrInvalidSpecialization),
		errors.Is(err, doctor.ErrInvalidCapacity),
		errors.Is(err, patient.ErrInvalidName):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// callerEntry builds the audit skeleton from the authenticated claims.
func callerEntry(c *gin.Context) service.AuditEntry {
	entry := service.AuditEntry{
		IPAddress: c.ClientIP(),
		RequestID: c.GetString(requestIDKey),
	}
	if claims := claimsFrom(c); claims != nil {
		entry.UserID = claims.UserID
		entry.UserRole = string(claims.Role)
	}
	return entry
}
