// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/logico/fleet/internal/handlers"
	mw "codeberg.org/logico/fleet/internal/middleware"
	"codeberg.org/logico/fleet/internal/models"
	"github.com/labstack/echo/v4"
)

// crud registers list, create, show, update and delete routes on g.
func crud(g *echo.Group, list, create, show, update, remove echo.HandlerFunc, itemMW ...echo.MiddlewareFunc) {
	g.GET("", list)
	g.POST("", create)
	g.GET("/:id", show, itemMW...)
	g.PUT("/:id", update, itemMW...)
	g.DELETE("/:id", remove, itemMW...)
}

func (a *App) setupRoutes(e *echo.Echo) {
	h := handlers.New(a.Repo)
	authH := handlers.NewAuth(a.Auth, a.Sessions)
	recoveryH := handlers.NewRecovery(a.Recovery, a.Sessions)
	reportH := handlers.NewReports(a.Reports, a.Repo)

	requireAuth := mw.RequireAuth()
	adminOnly := mw.RequireRole(models.RoleAdmin)
	staff := mw.RequireRole(models.RoleAdmin, models.RoleReceptionist)

	e.GET("/health", h.Health)
	e.GET("/", h.Home)
	e.GET("/me", h.Me, requireAuth)

	// Identity
	auth := e.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/logout", authH.Logout)
	auth.POST("/register", authH.Register)
	auth.POST("/password", authH.ChangePassword, requireAuth)

	// Password recovery
	auth.POST("/recovery/request", recoveryH.Request, a.limiter.Limit())
	auth.POST("/recovery/verify", recoveryH.Verify, a.limiter.Limit())
	auth.POST("/recovery/reset", recoveryH.Reset)

	// Records
	crud(e.Group("/pharmacies", adminOnly),
		h.ListPharmacies, h.CreatePharmacy, h.GetPharmacy, h.UpdatePharmacy, h.DeletePharmacy)
	crud(e.Group("/vehicles", adminOnly),
		h.ListVehicles, h.CreateVehicle, h.GetVehicle, h.UpdateVehicle, h.DeleteVehicle)
	crud(e.Group("/drivers", adminOnly),
		h.ListDrivers, h.CreateDriver, h.GetDriver, h.UpdateDriver, h.DeleteDriver)
	crud(e.Group("/assignments/vehicles", adminOnly),
		h.ListVehicleAssignments, h.CreateVehicleAssignment, h.GetVehicleAssignment,
		h.UpdateVehicleAssignment, h.DeleteVehicleAssignment)
	crud(e.Group("/assignments/pharmacies", adminOnly),
		h.ListPharmacyAssignments, h.CreatePharmacyAssignment, h.GetPharmacyAssignment,
		h.UpdatePharmacyAssignment, h.DeletePharmacyAssignment)

	// Receptionists list and create movements, admins manage them.
	crud(e.Group("/movements", staff),
		h.ListMovements, h.CreateMovement, h.GetMovement, h.UpdateMovement, h.DeleteMovement,
		adminOnly)

	// Reports
	reports := e.Group("/reports", requireAuth)
	reports.GET("/movements", reportH.Movements)
	reports.GET("/movements/pdf", reportH.PDF)
	reports.GET("/movements/xlsx", reportH.XLSX)
	reports.GET("/records", reportH.Records, adminOnly)
}
