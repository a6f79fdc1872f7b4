package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// RoleAdmin único rol que puede cambiar el certificado de la empresa.
const RoleAdmin = "admin"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EFactura      *EFacturaHandler
	ModuleChecker moduleChecker
	JWTSecret     string
	JWTIssuer     string
	Logger        zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token y módulo efactura activo)
	ef := api.Group("/efactura",
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		RequireModule(entity.ModuleEFactura, deps.ModuleChecker, deps.Logger),
	)
	h := deps.EFactura
	ef.Post("/invoices/submit-batch", h.SubmitBatch)
	ef.Post("/invoices/:id/submit", h.Submit)
	ef.Get("/status/:uploadId", h.Status)
	ef.Get("/download/:downloadId", h.Download)
	ef.Get("/download/:downloadId/xml", h.Receipt)
	ef.Get("/messages", h.Messages)
	ef.Post("/received/download", h.DownloadReceived)
	ef.Post("/validate", h.Validate)
	ef.Post("/convert", h.Convert)
	ef.Post("/sync", h.Sync)
	ef.Get("/certificate", h.GetCertificate)
	ef.Put("/certificate", RequireRole(RoleAdmin), h.PutCertificate)
}
