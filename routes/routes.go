package routes

import (
	"net/http"

	"nova/auth"
	"nova/filedrop"
	"nova/kioskfeed"
	"nova/machines"
	"nova/members"
	"nova/middleware"
	"nova/passes"
	"nova/pay"
	"nova/ratelim"
	"nova/reservations"
	"nova/roles"
	"nova/scans"
	"nova/sessions"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/memberpic/*filepath", http.Dir("static/memberpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", rl.Limit(middleware.Authenticate(auth.RefreshToken)))
}

// AddKioskRoutes wires the scan endpoint and the live dashboard feed. The
// scan endpoint is deliberately unauthenticated: the kiosk terminal itself
// has no user session, only a rate limit.
func AddKioskRoutes(router *httprouter.Router, kiosk *sessions.KioskHandler, hub *kioskfeed.Hub, rl *ratelim.RateLimiter) {
	router.POST("/api/kiosk/scan", rl.Limit(kiosk.Scan))
	router.GET("/api/kiosk/feed", hub.ServeWS)
}

func AddMemberRoutes(router *httprouter.Router, h *members.Handler, rl *ratelim.RateLimiter) {
	router.GET("/api/members", middleware.Authenticate(h.List))
	router.GET("/api/members/:id", middleware.Authenticate(h.Get))
	router.POST("/api/members", middleware.RequireRole("staff", h.Create))
	router.PUT("/api/members/:id", middleware.RequireRole("staff", h.Update))
	router.PUT("/api/members/:id/badge", middleware.RequireRole("staff", h.AssignBadge))
	router.POST("/api/members/:id/renew", middleware.RequireRole("staff", idempotent(h.Renew)))
	router.POST("/api/members/:id/photo", middleware.RequireRole("staff", filedrop.UploadMemberPhoto))
	router.GET("/api/members/:id/pass", middleware.Authenticate(passes.PrintPass))
}

func AddSessionRoutes(router *httprouter.Router, h *sessions.Handler) {
	router.GET("/api/sessions", middleware.Authenticate(sessions.List))
	router.POST("/api/sessions", middleware.RequireRole("staff", h.Start))
	router.POST("/api/sessions/:id/end", middleware.RequireRole("staff", h.End))
	router.GET("/api/sessions/open/:memberId", middleware.Authenticate(h.GetOpen))
}

func AddReservationRoutes(router *httprouter.Router, h *reservations.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/reservations/check", rl.Limit(middleware.Authenticate(h.CheckConflicts)))
	router.POST("/api/reservations", rl.Limit(middleware.Authenticate(h.Create)))
	router.GET("/api/reservations", middleware.Authenticate(h.List))
	router.GET("/api/reservations/:id", middleware.Authenticate(h.Get))
	router.PUT("/api/reservations/:id/status", middleware.RequireRole("staff", h.UpdateStatus))
	router.POST("/api/reservations/:id/cancel", middleware.Authenticate(h.Cancel))
	router.GET("/ws/reservations/:resourceType/:resourceId", reservations.HandleWS)
}

func AddInventoryRoutes(router *httprouter.Router) {
	router.GET("/api/machines", middleware.Authenticate(machines.ListMachines))
	router.POST("/api/machines", middleware.RequireRole("staff", machines.CreateMachine))
	router.PUT("/api/machines/:id/status", middleware.RequireRole("staff", machines.UpdateMachineStatus))
	router.DELETE("/api/machines/:id", middleware.RequireRole("admin", machines.DeleteMachine))

	router.GET("/api/tools", middleware.Authenticate(machines.ListTools))
	router.POST("/api/tools", middleware.RequireRole("staff", machines.CreateTool))
	router.POST("/api/tools/:id/checkout", middleware.RequireRole("staff", machines.CheckOutTool))
	router.DELETE("/api/tools/:id", middleware.RequireRole("admin", machines.DeleteTool))

	router.GET("/api/materials", middleware.Authenticate(machines.ListMaterials))
	router.POST("/api/materials", middleware.RequireRole("staff", machines.CreateMaterial))
	router.POST("/api/materials/:id/adjust", middleware.RequireRole("staff", machines.AdjustMaterial))
	router.DELETE("/api/materials/:id", middleware.RequireRole("admin", machines.DeleteMaterial))
}

func AddRoleRoutes(router *httprouter.Router) {
	router.GET("/api/roles", middleware.Authenticate(roles.List))
	router.POST("/api/roles", middleware.RequireRole("admin", roles.Create))
	router.PUT("/api/roles/:id", middleware.RequireRole("admin", roles.Update))
	router.DELETE("/api/roles/:id", middleware.RequireRole("admin", roles.Delete))
}

func AddPayRoutes(router *httprouter.Router) {
	router.GET("/api/payments", middleware.RequireRole("staff", pay.ListPayments))
	router.GET("/api/payments/:id/receipt", middleware.Authenticate(pay.PrintReceipt))
	router.GET("/api/plans", middleware.Authenticate(pay.ListPlans))
}

func AddScanRoutes(router *httprouter.Router) {
	router.GET("/api/scans", middleware.RequireRole("staff", scans.List))
	router.POST("/api/passes/verify", passes.VerifyPass)
}

// idempotent adapts the Idempotency-Key replay guard to httprouter handlers.
func idempotent(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		pay.IdempotencyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next(w, r, ps)
		})).ServeHTTP(w, r)
	}
}
