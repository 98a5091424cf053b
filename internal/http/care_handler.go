package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"medportal/internal/repository"
	"medportal/internal/service"
)

// CareHandler mantiene dependencias para endpoints de medicos y citas.
type CareHandler struct {
	logger       *zap.Logger
	doctors      repository.DoctorRepository
	appointments *service.AppointmentService
}

// NewCareHandler crea una instancia de CareHandler con dependencias necesarias.
func NewCareHandler(logger *zap.Logger, doctors repository.DoctorRepository, appointments *service.AppointmentService) *CareHandler {
	return &CareHandler{
		logger:       logger,
		doctors:      doctors,
		appointments: appointments,
	}
}

// ListDoctors maneja GET /doctors.
func (h *CareHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.doctors.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list doctors failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list doctors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

// GetDoctor maneja GET /doctors/:id.
func (h *CareHandler) GetDoctor(c *gin.Context) {
	doctor, err := h.doctors.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
			return
		}
		h.logger.Error("get doctor failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load doctor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctor": doctor})
}

// BookAppointment maneja POST /appointments.
func (h *CareHandler) BookAppointment(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req struct {
		DoctorID string `json:"doctor_id" binding:"required"`
		Date     string `json:"date" binding:"required"`
		Time     string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	appointment, err := h.appointments.Book(c.Request.Context(), account.ID, service.BookInput{
		DoctorID: req.DoctorID,
		Date:     req.Date,
		Time:     req.Time,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDoctorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
		case errors.Is(err, service.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("book appointment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not book appointment"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appointment})
}

// ListAppointments maneja GET /appointments.
func (h *CareHandler) ListAppointments(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	appointments, err := h.appointments.ListMine(c.Request.Context(), account.ID)
	if err != nil {
		h.logger.Error("list appointments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list appointments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}
