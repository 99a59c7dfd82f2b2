package payment

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the authenticated payment HTTP surface onto r.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/payments/:id", h.Get)
}

// RegisterPublicRoutes mounts the provider webhook callback, which
// carries no user JWT and so is not behind the Authn middleware.
// Handler.Callback does not verify any provider signature.
func RegisterPublicRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/payments/callback", h.Callback)
}
