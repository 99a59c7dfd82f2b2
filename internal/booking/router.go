package booking

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/bookings/create", h.Create)
	r.GET("/bookings", h.List)
	r.GET("/bookings/:id", h.Get)
	r.PUT("/bookings/:id/cancel", h.Cancel)
}
