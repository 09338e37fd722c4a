package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// VehicleHandler expone el catálogo público y la edición admin.
type VehicleHandler struct {
	uc *vehicles.UseCase
}

// NewVehicleHandler construye el handler.
func NewVehicleHandler(uc *vehicles.UseCase) *VehicleHandler {
	return &VehicleHandler{uc: uc}
}

// List godoc
// @Summary      Listar vehículos del catálogo (paginado, 21 por página)
// @Tags         vehicles
// @Produce      json
// @Param        page          query  int     false  "Página (desde 1)"  default(1)
// @Param        search        query  string  false  "Búsqueda por título/marca/modelo"
// @Param        marca         query  string  false  "Marcas separadas por coma"
// @Param        autoano       query  string  false  "Años separados por coma"
// @Param        ubicacion     query  string  false  "Sucursales separadas por coma"
// @Param        orderby       query  string  false  "price-asc, price-desc, year-desc, mileage-asc..."
// @Success      200  {object}  dto.VehicleListResponse
// @Router       /api/vehiculos [get]
func (h *VehicleHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	filters := parseFilters(c)
	list, total, err := h.uc.List(c.UserContext(), filters, page)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.VehicleListResponse{
		Page: dto.PageResponse{Limit: vehicles.PageSize, Offset: (page - 1) * vehicles.PageSize, Total: total},
	}
	for _, v := range list {
		out.Items = append(out.Items, *vehicles.ToResponse(v))
	}
	return c.JSON(out)
}

func parseFilters(c *fiber.Ctx) entity.VehicleFilters {
	f := entity.VehicleFilters{
		Search:       c.Query("search"),
		Marca:        splitQuery(c.Query("marca")),
		Promociones:  splitQuery(c.Query("promociones")),
		Garantia:     splitQuery(c.Query("garantia")),
		Carroceria:   splitQuery(c.Query("carroceria")),
		Transmision:  splitQuery(c.Query("transmision")),
		Combustible:  splitQuery(c.Query("combustible")),
		Ubicacion:    splitQuery(c.Query("ubicacion")),
		HideSeparado: c.QueryBool("hide_separado", true),
		OrderBy:      c.Query("orderby"),
	}
	for _, y := range splitQuery(c.Query("autoano")) {
		if n := cast.ToInt(y); n > 0 {
			f.AutoAno = append(f.AutoAno, n)
		}
	}
	f.MinPrecio = queryDecimal(c, "min_precio")
	f.MaxPrecio = queryDecimal(c, "max_precio")
	f.MinEnganche = queryDecimal(c, "min_enganche")
	f.MaxEnganche = queryDecimal(c, "max_enganche")
	return f
}

func splitQuery(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryDecimal(c *fiber.Ctx, key string) decimal.Decimal {
	if s := c.Query(key); s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// GetBySlug godoc
// @Summary      Obtener vehículo por slug (lookup escalonado con fallback OC/ID)
// @Tags         vehicles
// @Produce      json
// @Param        slug  path  string  true  "Slug del vehículo"
// @Success      200   {object}  dto.VehicleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vehiculos/{slug} [get]
func (h *VehicleHandler) GetBySlug(c *fiber.Ctx) error {
	v, err := h.uc.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vehicles.ToResponse(v))
}

// GetByOrdenCompra godoc
// @Summary      Obtener vehículo por orden de compra
// @Tags         vehicles
// @Produce      json
// @Param        ordencompra  path  string  true  "Orden de compra"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vehiculos/oc/{ordencompra} [get]
func (h *VehicleHandler) GetByOrdenCompra(c *fiber.Ctx) error {
	v, err := h.uc.GetByOrdenCompra(c.UserContext(), c.Params("ordencompra"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vehicles.ToResponse(v))
}

// FilterOptions godoc
// @Summary      Valores disponibles para los filtros del catálogo
// @Tags         vehicles
// @Produce      json
// @Success      200  {object}  dto.FilterOptionsResponse
// @Router       /api/vehiculos/filtros [get]
func (h *VehicleHandler) FilterOptions(c *fiber.Ctx) error {
	out, err := h.uc.FilterOptions()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Slugs godoc
// @Summary      Slugs de vehículos publicados (sitemap)
// @Tags         vehicles
// @Produce      json
// @Success      200  {array}  string
// @Router       /api/vehiculos/slugs [get]
func (h *VehicleHandler) Slugs(c *fiber.Ctx) error {
	out, err := h.uc.ListSlugs()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecordView godoc
// @Summary      Registrar una vista del vehículo
// @Tags         vehicles
// @Produce      json
// @Param        slug  path  string  true  "Slug del vehículo"
// @Success      200   {object}  dto.VehicleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vehiculos/{slug}/vista [post]
func (h *VehicleHandler) RecordView(c *fiber.Ctx) error {
	v, err := h.uc.RecordView(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vehicles.ToResponse(v))
}

// Update godoc
// @Summary      Editar campos del vehículo (panel admin, allow-list)
// @Tags         vehicles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ordencompra  path  string                    true  "Orden de compra"
// @Param        body         body  dto.UpdateVehicleRequest  true  "Campos editables"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vehiculos/oc/{ordencompra} [put]
func (h *VehicleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateVehicleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	v, err := h.uc.UpdateEditable(c.UserContext(), c.Params("ordencompra"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vehicles.ToResponse(v))
}
