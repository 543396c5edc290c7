// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"petlove/internal/http/handlers"
	"petlove/internal/http/middleware"
	"petlove/internal/modules/access"
	"petlove/internal/modules/booking"
	"petlove/internal/modules/chat"
	"petlove/internal/modules/event"
	"petlove/internal/modules/location"
	"petlove/internal/modules/pricing"
	"petlove/internal/modules/profile"
)

type RouterDeps struct {
	Verifier middleware.TokenVerifier
	Revoker  handlers.SessionRevoker
	Resolver *access.Resolver
	Pricing  *pricing.Service
	Booking  *booking.Service
	Profile  *profile.Service
	Location *location.Service
	Chat     *chat.Service
	Events   *event.Service
	Log      *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	authed := middleware.Auth(deps.Verifier)
	signedIn := middleware.RequireRoles(deps.Resolver)
	admins := middleware.RequireRoles(deps.Resolver, access.AdminRoles...)
	superAdmins := middleware.RequireRoles(deps.Resolver, access.SuperAdminRoles...)

	quotes := handlers.NewQuoteHandler(deps.Pricing, deps.Booking)
	api.POST("/quotes", quotes.Quote)
	api.GET("/capacity", quotes.Capacity)
	api.POST("/bookings/validate-step", quotes.ValidateStep)

	locations := handlers.NewLocationHandler(deps.Location)
	api.POST("/locations/pick", locations.Pick)
	api.GET("/locations/sessions/:id", locations.History)

	account := handlers.NewAccountHandler(deps.Profile, deps.Resolver, deps.Revoker)
	api.POST("/register", authed, account.Register)
	api.GET("/me", authed, signedIn, account.Me)
	api.PUT("/me", authed, signedIn, account.UpdateProfile)
	api.GET("/me/profile", authed, signedIn, account.Profile)
	api.POST("/me/refresh", authed, account.Refresh)
	api.GET("/me/events", authed, account.Events)
	api.POST("/auth/signout", authed, account.SignOut)

	bookings := handlers.NewBookingHandler(deps.Booking, deps.Resolver)
	user := api.Group("/bookings", authed, signedIn)
	user.POST("", bookings.Create)
	user.GET("", bookings.List)
	user.GET("/stats", bookings.Stats)
	user.GET("/:id", bookings.Get)
	user.POST("/:id/cancel", bookings.Cancel)

	events := handlers.NewEventHandler(deps.Events)
	api.POST("/events/registrations", events.Register)

	chatHandler := handlers.NewChatHandler(deps.Chat)
	api.POST("/chat", authed, signedIn, chatHandler.Chat)
	api.GET("/chat/quota", authed, signedIn, chatHandler.Quota)

	adminHandler := handlers.NewAdminHandler(deps.Booking, deps.Profile, deps.Resolver)
	admin := api.Group("/admin", authed, admins)
	admin.GET("/bookings", adminHandler.ListBookings)
	admin.GET("/bookings/stats", adminHandler.BookingStats)
	admin.POST("/bookings/:id/status", adminHandler.UpdateStatus)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/events/registrations", events.List)
	admin.GET("/events/vouchers/:code", events.Voucher)
	admin.PUT("/users/:id/role", superAdmins, adminHandler.UpdateRole)
	admin.DELETE("/users/:id", superAdmins, adminHandler.DeleteUser)

	return r
}
