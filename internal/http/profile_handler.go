package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medportal/internal/service"
)

// ProfileHandler mantiene dependencias para endpoints de perfil.
type ProfileHandler struct {
	logger   *zap.Logger
	accounts *service.AccountService
	sessions *service.SessionService
	medical  *service.MedicalRecordService
}

// NewProfileHandler crea una instancia de ProfileHandler con dependencias necesarias.
func NewProfileHandler(logger *zap.Logger, accounts *service.AccountService, sessions *service.SessionService, medical *service.MedicalRecordService) *ProfileHandler {
	return &ProfileHandler{
		logger:   logger,
		accounts: accounts,
		sessions: sessions,
		medical:  medical,
	}
}

// View maneja GET /profile.
func (h *ProfileHandler) View(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	record, err := h.medical.Get(c.Request.Context(), account.ID)
	if err != nil {
		h.logger.Error("load medical record failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "medical": record})
}

// Update maneja PUT /profile con semantica de actualizacion parcial: solo
// los campos presentes en el JSON se tocan.
func (h *ProfileHandler) Update(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req struct {
		Username        *string `json:"username"`
		Email           *string `json:"email"`
		FullName        *string `json:"full_name"`
		PhoneNumber     *string `json:"phone_number"`
		DateOfBirth     *string `json:"date_of_birth"`
		Password        *string `json:"password"`
		ConfirmPassword string  `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.accounts.UpdateProfile(c.Request.Context(), account.ID, service.UpdateProfileInput{
		Username:        req.Username,
		Email:           req.Email,
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		DateOfBirth:     req.DateOfBirth,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": updated})
}

// UpdateMedical maneja PUT /profile/medical.
func (h *ProfileHandler) UpdateMedical(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req struct {
		FullName          *string `json:"full_name"`
		DateOfBirth       *string `json:"date_of_birth"`
		Gender            *string `json:"gender"`
		PhoneNumber       *string `json:"phone_number"`
		Symptoms          *string `json:"symptoms"`
		SymptomsStartedAt *string `json:"symptoms_started_at"`
		CurrentMedication *string `json:"current_medication"`
		Allergies         *string `json:"allergies"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	record, err := h.medical.Update(c.Request.Context(), account.ID, service.UpdateMedicalRecordInput{
		FullName:          req.FullName,
		DateOfBirth:       req.DateOfBirth,
		Gender:            req.Gender,
		PhoneNumber:       req.PhoneNumber,
		Symptoms:          req.Symptoms,
		SymptomsStartedAt: req.SymptomsStartedAt,
		CurrentMedication: req.CurrentMedication,
		Allergies:         req.Allergies,
	})
	if err != nil {
		h.respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"medical": record})
}

// Delete maneja DELETE /profile. La sesion se termina de forma sincrona
// antes de eliminar la cuenta.
func (h *ProfileHandler) Delete(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	if token := sessionToken(c); token != "" {
		h.sessions.Terminate(token)
	}
	clearSessionCookie(c)

	if err := h.accounts.Delete(c.Request.Context(), account.ID); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		h.logger.Error("delete account failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *ProfileHandler) respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTooShort),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnsupportedProvider):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	default:
		h.logger.Error("update profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
	}
}
