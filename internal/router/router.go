package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/handler"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/middleware"
)

// Register wires the full HTTP surface onto the provided Echo instance.
// The three POST endpoints and GET / form the client contract; /v1/me is
// an authenticated convenience endpoint gated by the JWT middleware.
func Register(e *echo.Echo, a *handler.AuthHandler, cm *handler.CommentHandler, jwtSecret string) {
	// Health probe used by the hosting platform.
	e.GET("/", handler.Health)

	e.POST("/signup", a.Signup)
	e.POST("/login", a.Login)
	e.POST("/generate-comment", cm.Generate)

	// Authenticated routes live under /v1 behind bearer-token auth.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
