package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autos-trefa/trefa-api/internal/application/auth"
	"github.com/autos-trefa/trefa-api/internal/application/consignment"
	"github.com/autos-trefa/trefa-api/internal/application/favorites"
	"github.com/autos-trefa/trefa-api/internal/application/financing"
	"github.com/autos-trefa/trefa-api/internal/application/photos"
	"github.com/autos-trefa/trefa-api/internal/application/sync"
	"github.com/autos-trefa/trefa-api/internal/application/valuation"
	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/application/verification"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.UseCase
	VehicleUC      *vehicles.UseCase
	FinancingUC    *financing.UseCase
	VerificationUC *verification.UseCase
	PhotoUC        *photos.UseCase
	ConsignmentUC  *consignment.UseCase
	FavoritesUC    *favorites.UseCase
	ValuationUC    *valuation.UseCase
	SyncUC         *sync.UseCase
	Uploader       photos.Uploader
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Vehículos (público; las estáticas van antes que /:slug)
	vehiculos := api.Group("/vehiculos")
	vehicleHandler := NewVehicleHandler(deps.VehicleUC)
	vehiculos.Get("/filtros", vehicleHandler.FilterOptions)
	vehiculos.Get("/slugs", vehicleHandler.Slugs)
	vehiculos.Get("/oc/:ordencompra", vehicleHandler.GetByOrdenCompra)
	vehiculos.Post("/:slug/vista", vehicleHandler.RecordView)
	vehiculos.Get("/:slug", vehicleHandler.GetBySlug)
	vehiculos.Get("/", vehicleHandler.List)

	// Consignaciones públicas. Van antes del grupo protegido para que los
	// visitantes anónimos vean el detalle; el token es opcional para que el
	// dueño o el staff vean sus borradores, y el constraint <guid> deja
	// pasar las rutas estáticas protegidas (/mias, /moderacion, ...).
	consignmentHandler := NewConsignmentHandler(deps.ConsignmentUC)
	api.Get("/consignaciones", consignmentHandler.ListPublic)
	api.Get("/consignaciones/:id<guid>", OptionalAuth(deps.JWTSecret), consignmentHandler.Get)
	api.Post("/consignaciones/:id<guid>/contacto", consignmentHandler.RecordContact)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Perfiles
	profiles := protected.Group("/profiles")
	profiles.Get("/me", authHandler.Me)
	profiles.Put("/me", authHandler.UpdateMe)
	profiles.Post("/me/advisor", authHandler.AssignAdvisor)
	profiles.Get("/", RequireRole(entity.RoleAdmin), authHandler.List)
	profiles.Put("/:id/role", RequireRole(entity.RoleAdmin), authHandler.SetRole)

	// Verificación telefónica
	verif := protected.Group("/verification")
	verificationHandler := NewVerificationHandler(deps.VerificationUC)
	verif.Post("/send", verificationHandler.SendOTP)
	verif.Post("/check", verificationHandler.VerifyOTP)

	// Financiamiento
	fin := protected.Group("/financiamiento")
	applicationHandler := NewApplicationHandler(deps.FinancingUC, deps.Uploader)
	fin.Get("/vehiculos", applicationHandler.SearchVehicles)
	fin.Get("/terminos/:ordencompra", applicationHandler.Terms)

	// Solicitudes de financiamiento
	solicitudes := protected.Group("/solicitudes")
	solicitudes.Get("/revision", RequireRole(entity.RoleAdmin, entity.RoleSales), applicationHandler.ListByStatus)
	solicitudes.Post("/", applicationHandler.Create)
	solicitudes.Get("/", applicationHandler.ListMine)
	solicitudes.Put("/:id/revision", RequireRole(entity.RoleAdmin, entity.RoleSales), applicationHandler.Review)
	solicitudes.Post("/:id/enviar", applicationHandler.Submit)
	solicitudes.Post("/:id/documentos", applicationHandler.UploadDocument)
	solicitudes.Get("/:id/documentos", applicationHandler.ListDocuments)
	solicitudes.Put("/:id", applicationHandler.Update)
	solicitudes.Get("/:id", applicationHandler.Get)

	// Favoritos y alertas de precio
	favoritesHandler := NewFavoritesHandler(deps.FavoritesUC)
	protected.Get("/favoritos", favoritesHandler.ListFavorites)
	protected.Post("/favoritos/:ordencompra", favoritesHandler.ToggleFavorite)
	protected.Get("/alertas-precio", favoritesHandler.ListPriceWatches)
	protected.Post("/alertas-precio/:ordencompra", favoritesHandler.TogglePriceWatch)

	// Valuación
	val := protected.Group("/valuacion")
	valuationHandler := NewValuationHandler(deps.ValuationUC)
	val.Get("/marcas", valuationHandler.Brands)
	val.Get("/modelos", valuationHandler.Models)
	val.Get("/anios", valuationHandler.Years)
	val.Post("/cotizar", valuationHandler.Quote)
	val.Post("/reporte", valuationHandler.Report)

	// Consignaciones del usuario y moderación
	cons := protected.Group("/consignaciones")
	cons.Get("/mias", consignmentHandler.ListMine)
	cons.Get("/moderacion", RequireRole(entity.RoleAdmin, entity.RoleSales), consignmentHandler.ListPending)
	cons.Get("/estadisticas", consignmentHandler.Stats)
	cons.Post("/", consignmentHandler.Create)
	cons.Post("/:id/aprobar", RequireRole(entity.RoleAdmin, entity.RoleSales), consignmentHandler.Approve)
	cons.Post("/:id/rechazar", RequireRole(entity.RoleAdmin, entity.RoleSales), consignmentHandler.Reject)
	cons.Post("/:id/enviar", consignmentHandler.Submit)
	cons.Put("/:id/estado", consignmentHandler.SetStatus)
	cons.Put("/:id/fotos/:imageId/primaria", consignmentHandler.SetPrimaryImage)
	cons.Delete("/:id/fotos/:imageId", consignmentHandler.DeleteImage)
	cons.Post("/:id/fotos", consignmentHandler.AddImage)
	cons.Put("/:id", consignmentHandler.Update)
	cons.Delete("/:id", consignmentHandler.Delete)

	// Gestión de fotos del inventario (panel interno)
	fotos := protected.Group("/fotos", RequireRole(entity.RoleAdmin, entity.RoleMarketing))
	photoHandler := NewPhotoHandler(deps.PhotoUC)
	fotos.Get("/faltantes", photoHandler.Missing)
	fotos.Put("/:ordencompra/principal", photoHandler.SetFeatured)
	fotos.Get("/:ordencompra", photoHandler.Get)
	fotos.Post("/:ordencompra", photoHandler.Upload)
	fotos.Delete("/:ordencompra", photoHandler.Delete)

	// Edición de inventario (solo admin)
	vehiculosAdmin := protected.Group("/vehiculos", RequireRole(entity.RoleAdmin))
	vehiculosAdmin.Put("/oc/:ordencompra", vehicleHandler.Update)

	// Administración
	admin := protected.Group("/admin", RequireRole(entity.RoleAdmin))
	adminHandler := NewAdminHandler(deps.SyncUC)
	admin.Post("/sync", adminHandler.RunSync)
}
