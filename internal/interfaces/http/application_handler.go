package http

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/financing"
	"github.com/autos-trefa/trefa-api/internal/application/photos"
	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
)

// maxDocumentSize tope del archivo subido a una solicitud.
const maxDocumentSize = 10 << 20

// ApplicationHandler maneja el wizard de financiamiento y sus solicitudes.
type ApplicationHandler struct {
	uc       *financing.UseCase
	uploader photos.Uploader
}

// NewApplicationHandler construye el handler.
func NewApplicationHandler(uc *financing.UseCase, uploader photos.Uploader) *ApplicationHandler {
	return &ApplicationHandler{uc: uc, uploader: uploader}
}

// Terms godoc
// @Summary      Términos de financiamiento de un vehículo
// @Tags         financing
// @Produce      json
// @Param        ordencompra   path   string  true   "Orden de compra"
// @Param        down_payment  query  string  false  "Enganche propuesto"
// @Success      200  {object}  dto.FinancingTermsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/financiamiento/terminos/{ordencompra} [get]
func (h *ApplicationHandler) Terms(c *fiber.Ctx) error {
	var dp *decimal.Decimal
	if s := c.Query("down_payment"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "enganche inválido"})
		}
		dp = &d
	}
	out, err := h.uc.Terms(c.Params("ordencompra"), dp)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SearchVehicles godoc
// @Summary      Buscar vehículos para el selector del wizard (máx. 12)
// @Tags         financing
// @Produce      json
// @Param        q  query  string  false  "Texto de búsqueda"
// @Success      200  {array}  dto.VehicleResponse
// @Router       /api/financiamiento/vehiculos [get]
func (h *ApplicationHandler) SearchVehicles(c *fiber.Ctx) error {
	list, err := h.uc.SearchVehicles(c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.VehicleResponse, 0, len(list))
	for _, v := range list {
		out = append(out, *vehicles.ToResponse(v))
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear solicitud de financiamiento (borrador)
// @Tags         financing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateApplicationRequest  true  "Vehículo y términos"
// @Success      201   {object}  dto.ApplicationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/solicitudes [post]
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateApplicationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar solicitud en borrador
// @Tags         financing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la solicitud"
// @Param        body  body  dto.UpdateApplicationRequest  true  "Cambios"
// @Success      200   {object}  dto.ApplicationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/solicitudes/{id} [put]
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateApplicationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Enviar solicitud a revisión
// @Tags         financing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ApplicationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/solicitudes/{id}/enviar [post]
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	out, err := h.uc.Submit(GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener solicitud
// @Tags         financing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ApplicationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/solicitudes/{id} [get]
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(GetUserID(c), IsStaff(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListMine godoc
// @Summary      Listar mis solicitudes
// @Tags         financing
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ApplicationListResponse
// @Router       /api/solicitudes [get]
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	out, err := h.uc.ListMine(GetUserID(c), pageLimit(c), pageOffset(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByStatus godoc
// @Summary      Bandeja de solicitudes por estado (staff)
// @Tags         financing
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  true  "submitted, reviewing, approved, rejected"
// @Success      200     {object}  dto.ApplicationListResponse
// @Router       /api/solicitudes/revision [get]
func (h *ApplicationHandler) ListByStatus(c *fiber.Ctx) error {
	out, err := h.uc.ListByStatus(c.Query("status", "submitted"), pageLimit(c), pageOffset(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Review godoc
// @Summary      Transición de revisión de una solicitud (staff)
// @Tags         financing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la solicitud"
// @Param        body  body  dto.ReviewApplicationRequest  true  "Estado nuevo y notas"
// @Success      200   {object}  dto.ApplicationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/solicitudes/{id}/revision [put]
func (h *ApplicationHandler) Review(c *fiber.Ctx) error {
	var in dto.ReviewApplicationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Review(GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UploadDocument godoc
// @Summary      Subir documento a la solicitud
// @Tags         financing
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "ID de la solicitud"
// @Param        type  formData  string  true  "ine_front, ine_back, proof_address, proof_income"
// @Param        file  formData  file    true  "Documento"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/solicitudes/{id}/documentos [post]
func (h *ApplicationHandler) UploadDocument(c *fiber.Ctx) error {
	docType := c.FormValue("type")
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "archivo requerido"})
	}
	if fh.Size > maxDocumentSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "el archivo excede 10 MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, err)
	}

	key := fmt.Sprintf("documentos/%s/%s-%d", c.Params("id"), docType, time.Now().UnixMilli())
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := h.uploader.Upload(c.UserContext(), key, contentType, data)
	if err != nil {
		return respondError(c, err)
	}

	out, err := h.uc.AddDocument(GetUserID(c), c.Params("id"), docType, url)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListDocuments godoc
// @Summary      Listar documentos de la solicitud
// @Tags         financing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {array}  dto.DocumentResponse
// @Router       /api/solicitudes/{id}/documentos [get]
func (h *ApplicationHandler) ListDocuments(c *fiber.Ctx) error {
	out, err := h.uc.ListDocuments(GetUserID(c), IsStaff(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func pageLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

func pageOffset(c *fiber.Ctx) int {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return offset
}
