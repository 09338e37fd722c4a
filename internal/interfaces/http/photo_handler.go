package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/photos"
)

// maxPhotoSize tope por archivo en la subida de fotos.
const maxPhotoSize = 15 << 20

// PhotoHandler administrador de fotos de inventario (staff).
type PhotoHandler struct {
	uc *photos.UseCase
}

// NewPhotoHandler construye el handler.
func NewPhotoHandler(uc *photos.UseCase) *PhotoHandler {
	return &PhotoHandler{uc: uc}
}

// Get godoc
// @Summary      Estado de imágenes de un vehículo
// @Tags         photos
// @Security     Bearer
// @Produce      json
// @Param        ordencompra  path  string  true  "Orden de compra"
// @Success      200  {object}  dto.VehiclePhotosResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fotos/{ordencompra} [get]
func (h *PhotoHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetPhotos(c.Params("ordencompra"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Upload godoc
// @Summary      Subir fotos de un vehículo (multipart, campo "files")
// @Tags         photos
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        ordencompra  path      string  true  "Orden de compra"
// @Param        files        formData  file    true  "Imágenes"
// @Success      201  {object}  dto.UploadPhotosResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/fotos/{ordencompra} [post]
func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "multipart requerido"})
	}
	var files []photos.UploadFile
	for _, fh := range form.File["files"] {
		if fh.Size > maxPhotoSize {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "cada foto debe pesar menos de 15 MB"})
		}
		f, err := fh.Open()
		if err != nil {
			return respondError(c, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return respondError(c, err)
		}
		files = append(files, photos.UploadFile{Name: fh.Filename, Data: data})
	}
	out, err := h.uc.Upload(c.UserContext(), c.Params("ordencompra"), files)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SetFeatured godoc
// @Summary      Fijar la imagen principal del vehículo
// @Tags         photos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ordencompra  path  string                  true  "Orden de compra"
// @Param        body         body  dto.SetFeaturedRequest  true  "URL de la imagen"
// @Success      200  {object}  dto.VehiclePhotosResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/fotos/{ordencompra}/principal [put]
func (h *PhotoHandler) SetFeatured(c *fiber.Ctx) error {
	var in dto.SetFeaturedRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.SetFeatured(c.Params("ordencompra"), in.URL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar una foto del vehículo
// @Tags         photos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ordencompra  path  string                  true  "Orden de compra"
// @Param        body         body  dto.DeletePhotoRequest  true  "URL de la imagen"
// @Success      200  {object}  dto.VehiclePhotosResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fotos/{ordencompra} [delete]
func (h *PhotoHandler) Delete(c *fiber.Ctx) error {
	var in dto.DeletePhotoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.DeletePhoto(c.UserContext(), c.Params("ordencompra"), in.URL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Missing godoc
// @Summary      Reporte de vehículos sin fotos
// @Tags         photos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MissingPhotosResponse
// @Router       /api/fotos/faltantes [get]
func (h *PhotoHandler) Missing(c *fiber.Ctx) error {
	out, err := h.uc.MissingPhotos()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
