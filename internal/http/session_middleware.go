package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"medportal/internal/domain"
	"medportal/internal/service"
)

// SessionCookieName es el nombre de la cookie que transporta el token de sesion.
const SessionCookieName = "portal_session"

const currentAccountKey = "current_account"

// setSessionCookie emite la cookie de sesion. Con remember la cookie es
// persistente con la vigencia extendida; sin remember queda limitada a la
// sesion del navegador.
func setSessionCookie(c *gin.Context, token string, remember bool, ttl time.Duration) {
	maxAge := 0
	if remember {
		maxAge = int(ttl.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}

// sessionToken extrae el token de la cookie o del header Authorization.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" && strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}

// SessionAuthMiddleware resuelve el token de sesion a una cuenta y la guarda
// en el contexto del request.
func SessionAuthMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
			c.Abort()
			return
		}
		account, err := sessions.CurrentAccount(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			c.Abort()
			return
		}
		c.Set(currentAccountKey, account)
		c.Next()
	}
}

// CurrentAccount obtiene la cuenta autenticada desde el contexto.
func CurrentAccount(c *gin.Context) (domain.Account, bool) {
	val, ok := c.Get(currentAccountKey)
	if !ok {
		return domain.Account{}, false
	}
	account, ok := val.(domain.Account)
	return account, ok
}
