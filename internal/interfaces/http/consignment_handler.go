package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/autos-trefa/trefa-api/internal/application/consignment"
	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/photos"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
)

// ConsignmentHandler maneja los anuncios "vende tu auto" y su moderación.
type ConsignmentHandler struct {
	uc *consignment.UseCase
}

// NewConsignmentHandler construye el handler.
func NewConsignmentHandler(uc *consignment.UseCase) *ConsignmentHandler {
	return &ConsignmentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear anuncio de consignación (borrador)
// @Tags         consignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateListingRequest  true  "Datos del vehículo"
// @Success      201   {object}  dto.ListingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/consignaciones [post]
func (h *ConsignmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateListingRequest
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
// @Summary      Editar anuncio propio (draft o rejected)
// @Tags         consignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del anuncio"
// @Param        body  body  dto.UpdateListingRequest  true  "Cambios"
// @Success      200   {object}  dto.ListingResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id} [put]
func (h *ConsignmentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateListingRequest
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
// @Summary      Enviar anuncio a moderación
// @Tags         consignments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del anuncio"
// @Success      200  {object}  dto.ListingResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id}/enviar [post]
func (h *ConsignmentHandler) Submit(c *fiber.Ctx) error {
	out, err := h.uc.Submit(GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetStatus godoc
// @Summary      Cambiar estado de un anuncio publicado (sold/paused/active/expired)
// @Tags         consignments
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true  "ID del anuncio"
// @Param        status  query  string  true  "Estado destino"
// @Success      200  {object}  dto.ListingResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id}/estado [put]
func (h *ConsignmentHandler) SetStatus(c *fiber.Ctx) error {
	out, err := h.uc.SetStatus(GetUserID(c), c.Params("id"), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar anuncio propio (solo draft)
// @Tags         consignments
// @Security     Bearer
// @Param        id  path  string  true  "ID del anuncio"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id} [delete]
func (h *ConsignmentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get godoc
// @Summary      Obtener anuncio (público si está activo)
// @Tags         consignments
// @Produce      json
// @Param        id  path  string  true  "ID del anuncio"
// @Success      200  {object}  dto.ListingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id} [get]
func (h *ConsignmentHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(GetUserID(c), GetRole(c) == entity.RoleAdmin, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecordContact godoc
// @Summary      Registrar un contacto sobre el anuncio
// @Tags         consignments
// @Param        id  path  string  true  "ID del anuncio"
// @Success      204
// @Router       /api/consignaciones/{id}/contacto [post]
func (h *ConsignmentHandler) RecordContact(c *fiber.Ctx) error {
	if err := h.uc.RecordContact(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMine godoc
// @Summary      Mis anuncios
// @Tags         consignments
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListingListResponse
// @Router       /api/consignaciones/mias [get]
func (h *ConsignmentHandler) ListMine(c *fiber.Ctx) error {
	out, err := h.uc.ListMine(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListPublic godoc
// @Summary      Anuncios activos (catálogo público de consignación)
// @Tags         consignments
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ListingListResponse
// @Router       /api/consignaciones [get]
func (h *ConsignmentHandler) ListPublic(c *fiber.Ctx) error {
	out, err := h.uc.ListPublic(pageLimit(c), pageOffset(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListPending godoc
// @Summary      Bandeja de moderación (admin)
// @Tags         consignments
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListingListResponse
// @Router       /api/consignaciones/moderacion [get]
func (h *ConsignmentHandler) ListPending(c *fiber.Ctx) error {
	out, err := h.uc.ListPending(pageLimit(c), pageOffset(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar anuncio pendiente (admin)
// @Tags         consignments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del anuncio"
// @Success      200  {object}  dto.ListingResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id}/aprobar [post]
func (h *ConsignmentHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar anuncio pendiente con motivo (admin)
// @Tags         consignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del anuncio"
// @Param        body  body  dto.RejectListingRequest  true  "Motivo"
// @Success      200   {object}  dto.ListingResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id}/rechazar [post]
func (h *ConsignmentHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectListingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Reject(GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de consignación (propias, o globales para admin)
// @Tags         consignments
// @Security     Bearer
// @Produce      json
// @Param        global  query  bool  false  "Estadísticas globales (solo admin)"
// @Success      200     {object}  dto.ConsignmentStatsResponse
// @Router       /api/consignaciones/estadisticas [get]
func (h *ConsignmentHandler) Stats(c *fiber.Ctx) error {
	global := c.QueryBool("global", false) && GetRole(c) == entity.RoleAdmin
	out, err := h.uc.Stats(GetUserID(c), global)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddImage godoc
// @Summary      Subir foto al anuncio (multipart, campo "file")
// @Tags         consignments
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "ID del anuncio"
// @Param        file  formData  file    true  "Imagen"
// @Success      201   {object}  dto.ListingImageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id}/fotos [post]
func (h *ConsignmentHandler) AddImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "archivo requerido"})
	}
	if fh.Size > maxPhotoSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "la foto debe pesar menos de 15 MB"})
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
	out, err := h.uc.AddImage(c.UserContext(), GetUserID(c), c.Params("id"), photos.UploadFile{Name: fh.Filename, Data: data})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SetPrimaryImage godoc
// @Summary      Fijar la foto primaria del anuncio
// @Tags         consignments
// @Security     Bearer
// @Param        id       path  string  true  "ID del anuncio"
// @Param        imageId  path  string  true  "ID de la foto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id}/fotos/{imageId}/primaria [put]
func (h *ConsignmentHandler) SetPrimaryImage(c *fiber.Ctx) error {
	if err := h.uc.SetPrimaryImage(GetUserID(c), c.Params("id"), c.Params("imageId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteImage godoc
// @Summary      Eliminar una foto del anuncio
// @Tags         consignments
// @Security     Bearer
// @Param        id       path  string  true  "ID del anuncio"
// @Param        imageId  path  string  true  "ID de la foto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/consignaciones/{id}/fotos/{imageId} [delete]
func (h *ConsignmentHandler) DeleteImage(c *fiber.Ctx) error {
	if err := h.uc.DeleteImage(c.UserContext(), GetUserID(c), c.Params("id"), c.Params("imageId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
