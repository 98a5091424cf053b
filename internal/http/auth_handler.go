package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medportal/internal/domain"
	"medportal/internal/identity"
	"medportal/internal/service"
)

// AuthHandler mantiene dependencias para endpoints de autenticacion.
type AuthHandler struct {
	logger   *zap.Logger
	accounts *service.AccountService
	sessions *service.SessionService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, accounts *service.AccountService, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		accounts: accounts,
		sessions: sessions,
	}
}

// Tipos de autenticacion aceptados en el campo auth_type.
const (
	authTypePassword  = "password"
	authTypeFederated = "federated"
)

type authRequest struct {
	AuthType string `json:"auth_type"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IDToken  string `json:"id_token"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Remember bool   `json:"remember"`
}

// credentialFrom convierte el request en la union de credenciales.
func credentialFrom(req authRequest) (service.Credential, bool) {
	switch req.AuthType {
	case authTypePassword, "":
		return service.PasswordCredential{Email: req.Email, Password: req.Password}, true
	case authTypeFederated:
		return service.FederatedToken{IDToken: req.IDToken}, true
	default:
		return nil, false
	}
}

// Register maneja POST /auth/register. La rama password crea la cuenta; la
// rama federada resuelve el claim (y crea la cuenta si es el primer login).
func (h *AuthHandler) Register(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var (
		account domain.Account
		err     error
	)
	switch req.AuthType {
	case authTypePassword, "":
		account, err = h.accounts.Register(c.Request.Context(), service.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			FullName: req.FullName,
		})
	case authTypeFederated:
		account, err = h.accounts.VerifyCredential(c.Request.Context(), service.FederatedToken{IDToken: req.IDToken})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auth type"})
		return
	}
	if err != nil {
		h.respondAuthError(c, err, "register")
		return
	}

	h.establish(c, account, req.Remember, http.StatusCreated)
}

// Login maneja POST /auth/login para ambas ramas de credencial.
func (h *AuthHandler) Login(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cred, ok := credentialFrom(req)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auth type"})
		return
	}

	account, err := h.accounts.VerifyCredential(c.Request.Context(), cred)
	if err != nil {
		h.respondAuthError(c, err, "login")
		return
	}

	h.establish(c, account, req.Remember, http.StatusOK)
}

// Logout maneja POST /auth/logout. Terminar una sesion ya terminada tambien
// responde 204.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		h.sessions.Terminate(token)
	}
	clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// Link maneja POST /profile/link: asocia una identidad federada a la cuenta
// password autenticada.
func (h *AuthHandler) Link(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	linked, err := h.accounts.LinkFederated(c.Request.Context(), account.ID, req.IDToken)
	if err != nil {
		h.respondAuthError(c, err, "link")
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": linked, "linked": linked.Linked()})
}

// Unlink maneja POST /profile/unlink.
func (h *AuthHandler) Unlink(c *gin.Context) {
	account, ok := CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	unlinked, err := h.accounts.UnlinkFederated(c.Request.Context(), account.ID)
	if err != nil {
		h.respondAuthError(c, err, "unlink")
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": unlinked, "linked": unlinked.Linked()})
}

func (h *AuthHandler) establish(c *gin.Context, account domain.Account, remember bool, status int) {
	token, err := h.sessions.Establish(c.Request.Context(), account, remember)
	if err != nil {
		if errors.Is(err, service.ErrAccountInactive) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account deactivated"})
			return
		}
		h.logger.Error("establish session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not establish session"})
		return
	}
	setSessionCookie(c, token, remember, h.sessions.TTL(remember))
	c.JSON(status, gin.H{"account": account, "token": token})
}

// respondAuthError mapea la taxonomia de errores de identidad a statuses HTTP.
func (h *AuthHandler) respondAuthError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, identity.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account deactivated"})
	case errors.Is(err, identity.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity provider unavailable"})
	case errors.Is(err, service.ErrUsernameTooShort),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrEmailOwnedByPassword),
		errors.Is(err, service.ErrAlreadyLinked),
		errors.Is(err, service.ErrNotLinked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
	}
}
