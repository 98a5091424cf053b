package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medportal/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas del portal.
func NewRouter(
	logger *zap.Logger,
	sessions *service.SessionService,
	authH *AuthHandler,
	profileH *ProfileHandler,
	careH *CareHandler,
	assistantH *AssistantHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/logout", authH.Logout)

	authed := r.Group("/", SessionAuthMiddleware(sessions))

	profile := authed.Group("/profile")
	profile.GET("", profileH.View)
	profile.PUT("", profileH.Update)
	profile.DELETE("", profileH.Delete)
	profile.POST("/link", authH.Link)
	profile.POST("/unlink", authH.Unlink)
	profile.PUT("/medical", profileH.UpdateMedical)

	authed.GET("/doctors", careH.ListDoctors)
	authed.GET("/doctors/:id", careH.GetDoctor)
	authed.POST("/appointments", careH.BookAppointment)
	authed.GET("/appointments", careH.ListAppointments)

	authed.POST("/assistant/ask", assistantH.Ask)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
