package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/config"
	"github.com/clinicroute/clinicroute/internal/domain"
	"github.com/clinicroute/clinicroute/internal/service"
	"github.com/clinicroute/clinicroute/pkg/auth"
	"github.com/clinicroute/clinicroute/pkg/metrics"
)

type RouterDeps struct {
	Config     *config.Config
	Log        *zap.Logger
	Metrics    *metrics.Collector
	JWTManager *auth.JWTManager

	AuthSvc        *service.AuthService
	DoctorSvc      *service.DoctorService
	PatientSvc     *service.PatientService
	AppointmentSvc *service.AppointmentService
	RoutingSvc     *service.RoutingService
}

// NewRouter wires middleware and the versioned API surface.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		RequestID(),
		Recovery(deps.Log),
		RequestLogger(deps.Log, deps.Metrics),
		RateLimit(deps.Config.RateLimit),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"name":    deps.Config.App.Name,
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.AuthSvc, deps.Log)
	doctorHandler := NewDoctorHandler(deps.DoctorSvc, deps.Log)
	patientHandler := NewPatientHandler(deps.PatientSvc, deps.Log)
	appointmentHandler := NewAppointmentHandler(deps.AppointmentSvc, deps.RoutingSvc, deps.Log)

	api := r.Group("/api/v1")

	// Public
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(Authenticate(deps.JWTManager))

	staff := []domain.Role{domain.RoleAdmin, domain.RoleReceptionist}
	clinical := []domain.Role{domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDoctor}
	anyRole := []domain.Role{domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDoctor, domain.RolePatient}

	authed.POST("/auth/users", RequireRoles(domain.RoleAdmin), authHandler.RegisterUser)

	doctors := authed.Group("/doctors")
	{
		doctors.POST("", RequireRoles(staff...), doctorHandler.Create)
		doctors.GET("", RequireRoles(anyRole...), doctorHandler.List)
		doctors.GET("/:id", RequireRoles(anyRole...), doctorHandler.Get)
		doctors.DELETE("/:id", RequireRoles(staff...), doctorHandler.Delete)
		doctors.POST("/:id/slots", RequireRoles(clinical...), doctorHandler.AddSlot)
		doctors.GET("/:id/slots", RequireRoles(anyRole...), doctorHandler.FreeSlots)
		doctors.GET("/:id/availability", RequireRoles(anyRole...), doctorHandler.Availability)
		doctors.GET("/:id/appointments", RequireRoles(clinical...), appointmentHandler.ListForDoctor)
	}

	patients := authed.Group("/patients")
	{
		patients.POST("", RequireRoles(staff...), patientHandler.Create)
		patients.GET("", RequireRoles(clinical...), patientHandler.List)
		patients.GET("/:id", RequireRoles(anyRole...), patientHandler.Get)
		patients.DELETE("/:id", RequireRoles(staff...), patientHandler.Delete)
		patients.POST("/:id/history", RequireRoles(clinical...), patientHandler.AddHistory)
		patients.GET("/:id/history", RequireRoles(clinical...), patientHandler.History)
		patients.GET("/:id/appointments", RequireRoles(anyRole...), appointmentHandler.ListForPatient)
	}

	appointments := authed.Group("/appointments")
	{
		appointments.POST("", RequireRoles(anyRole...), appointmentHandler.Book)
		appointments.POST("/emergency", RequireRoles(clinical...), appointmentHandler.Emergency)
		appointments.POST("/nearest", RequireRoles(anyRole...), appointmentHandler.Nearest)
		appointments.GET("/rank", RequireRoles(anyRole...), appointmentHandler.Rank)
		appointments.POST("/cancel", RequireRoles(anyRole...), appointmentHandler.Cancel)
		appointments.POST("/missed", RequireRoles(clinical...), appointmentHandler.MarkMissed)
		appointments.POST("/rebook", RequireRoles(clinical...), appointmentHandler.Rebook)
	}

	return r
}
