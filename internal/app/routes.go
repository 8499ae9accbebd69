package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// RouterOptions configures the inbound HTTP surface.
type RouterOptions struct {
	StaticTokens    []string
	JWTSecret       string
	RateLimitPerMin int
	// TrustedProxies may set X-Forwarded-For. Nil trusts none, so the client
	// IP is the connection's peer address.
	TrustedProxies []string
}

// Router builds the gin engine. /healthz sits outside auth and rate limiting.
func (a *App) Router(opts RouterOptions) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(gin.Recovery(), RequestID(), RequestLogger(a.Logger))

	router.GET("/healthz", a.HealthHandler)

	api := router.Group("/api")
	api.Use(
		NewRateLimiter(opts.RateLimitPerMin).Middleware(a.Logger),
		AuthMiddleware(opts.StaticTokens, opts.JWTSecret, a.Logger),
	)
	{
		api.GET("/tools", a.ToolsHandler)
		api.POST("/tool-calls", a.ToolCallHandler)
		api.GET("/meeting-types", a.ListMeetingTypesHandler)
		api.GET("/slots", a.GetSlotsHandler)
		api.GET("/availability", a.CheckAvailabilityHandler)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", a.CreateBookingHandler)
			bookings.GET("", a.ListBookingsHandler)
			bookings.DELETE("", a.CancelByTimeHandler)
			bookings.DELETE("/:id", a.CancelBookingHandler)
		}
	}
	return router, nil
}
