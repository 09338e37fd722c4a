package photos

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

// Dimensiones máximas de las variantes subidas a object storage.
const (
	maxImageWidth = 1600
	thumbWidth    = 480
)

// missingReportLimit tope del reporte de vehículos sin fotos.
const missingReportLimit = 200

// Uploader puerto hacia object storage (R2) para las fotos del panel admin.
type Uploader interface {
	// Upload guarda el objeto y devuelve su URL pública.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadFile archivo recibido en la subida multipart.
type UploadFile struct {
	Name string
	Data []byte
}

// UseCase del administrador de fotos: subida con variantes, imagen principal
// y reporte de inventario sin fotos. Toda escritura deja al vehículo en modo
// R2 para que esas imágenes tengan prioridad sobre las fuentes legacy.
type UseCase struct {
	repo     repository.VehicleRepository
	uploader Uploader
	cache    vehicles.EdgeCache // puede ser nil
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.VehicleRepository, uploader Uploader, cache vehicles.EdgeCache, log zerolog.Logger) *UseCase {
	return &UseCase{repo: repo, uploader: uploader, cache: cache, log: log}
}

// GetPhotos estado actual de imágenes de un vehículo.
func (uc *UseCase) GetPhotos(ordenCompra string) (*dto.VehiclePhotosResponse, error) {
	v, err := uc.mustVehicle(ordenCompra)
	if err != nil {
		return nil, err
	}
	return toPhotosResponse(v), nil
}

// Upload procesa cada archivo (reencuadre a 1600px más miniatura de 480px),
// lo sube a storage y lo agrega a la galería R2. Si el vehículo no tiene
// imagen principal, la primera subida queda como principal.
func (uc *UseCase) Upload(ctx context.Context, ordenCompra string, files []UploadFile) (*dto.UploadPhotosResponse, error) {
	if len(files) == 0 {
		return nil, domain.ErrInvalidInput
	}
	v, err := uc.mustVehicle(ordenCompra)
	if err != nil {
		return nil, err
	}

	resp := &dto.UploadPhotosResponse{}
	for i, f := range files {
		full, thumb, err := processImage(f.Data)
		if err != nil {
			uc.log.Warn().Err(err).Str("file", f.Name).Msg("imagen inválida, se omite")
			continue
		}
		base := fmt.Sprintf("vehiculos/%s/%d-%d", ordenCompra, time.Now().UnixMilli(), i)
		url, err := uc.uploader.Upload(ctx, base+".jpg", "image/jpeg", full)
		if err != nil {
			return nil, err
		}
		if _, err := uc.uploader.Upload(ctx, base+"-thumb.jpg", "image/jpeg", thumb); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo subir la miniatura")
		}
		v.R2Gallery = append(v.R2Gallery, url)
		resp.Uploaded = append(resp.Uploaded, url)
	}
	if len(resp.Uploaded) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if v.R2FeatureImage == "" {
		v.R2FeatureImage = resp.Uploaded[0]
	}
	v.UseR2Images = true
	if err := uc.saveImages(v); err != nil {
		return nil, err
	}
	resp.Featured = v.R2FeatureImage
	return resp, nil
}

// SetFeatured promueve una URL existente de la galería a imagen principal.
// Primero se limpia la principal anterior y después se fija la nueva, de modo
// que nunca hay dos principales.
func (uc *UseCase) SetFeatured(ordenCompra, url string) (*dto.VehiclePhotosResponse, error) {
	v, err := uc.mustVehicle(ordenCompra)
	if err != nil {
		return nil, err
	}
	if url == "" || (!contains(v.R2Gallery, url) && v.R2FeatureImage != url && !contains(v.Gallery(), url)) {
		return nil, domain.ErrInvalidInput
	}

	prev := v.R2FeatureImage
	v.R2FeatureImage = ""
	if prev != "" && prev != url && !contains(v.R2Gallery, prev) {
		v.R2Gallery = append(v.R2Gallery, prev)
	}
	v.R2FeatureImage = url
	v.R2Gallery = remove(v.R2Gallery, url)
	v.UseR2Images = true

	if err := uc.saveImages(v); err != nil {
		return nil, err
	}
	return toPhotosResponse(v), nil
}

// DeletePhoto quita la URL de todas las fuentes de imagen. Si era la imagen
// principal, la primera foto restante de la galería se promueve en su lugar.
func (uc *UseCase) DeletePhoto(ctx context.Context, ordenCompra, url string) (*dto.VehiclePhotosResponse, error) {
	v, err := uc.mustVehicle(ordenCompra)
	if err != nil {
		return nil, err
	}

	found := v.R2FeatureImage == url || contains(v.R2Gallery, url) ||
		v.FeatureImage == url || v.FeatureImageURL == url ||
		contains(v.GaleriaExterior, url) || contains(v.GaleriaInterior, url) ||
		contains(v.FotosExteriorURL, url) || contains(v.FotosInteriorURL, url)
	if !found {
		return nil, domain.ErrNotFound
	}

	wasFeatured := v.R2FeatureImage == url
	v.R2Gallery = remove(v.R2Gallery, url)
	v.GaleriaExterior = remove(v.GaleriaExterior, url)
	v.GaleriaInterior = remove(v.GaleriaInterior, url)
	v.FotosExteriorURL = remove(v.FotosExteriorURL, url)
	v.FotosInteriorURL = remove(v.FotosInteriorURL, url)
	if v.FeatureImage == url {
		v.FeatureImage = ""
	}
	if v.FeatureImageURL == url {
		v.FeatureImageURL = ""
	}
	if wasFeatured {
		v.R2FeatureImage = ""
		if rest := v.Gallery(); len(rest) > 0 {
			v.R2FeatureImage = rest[0]
			v.R2Gallery = remove(v.R2Gallery, rest[0])
		}
	}

	if err := uc.saveImages(v); err != nil {
		return nil, err
	}
	if key := storageKey(url); key != "" {
		if err := uc.uploader.Delete(ctx, key); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo borrar el objeto de storage")
		}
	}
	return toPhotosResponse(v), nil
}

// MissingPhotos reporte de vehículos Comprado sin imagen principal o galería.
func (uc *UseCase) MissingPhotos() (*dto.MissingPhotosResponse, error) {
	list, err := uc.repo.ListMissingPhotos(missingReportLimit)
	if err != nil {
		return nil, err
	}
	resp := &dto.MissingPhotosResponse{Total: len(list)}
	for _, v := range list {
		resp.Items = append(resp.Items, dto.MissingPhotosItem{
			OrdenCompra:     v.OrdenCompra,
			Titulo:          v.Titulo,
			HasFeatureImage: v.DisplayImage() != "",
			HasGallery:      len(v.Gallery()) > 0,
		})
	}
	return resp, nil
}

func (uc *UseCase) mustVehicle(ordenCompra string) (*entity.Vehicle, error) {
	v, err := uc.repo.GetByOrdenCompra(ordenCompra)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (uc *UseCase) saveImages(v *entity.Vehicle) error {
	if err := uc.repo.UpdateImages(v); err != nil {
		return err
	}
	if uc.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := uc.cache.SetVehicle(ctx, v); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo refrescar el caché del vehículo")
		}
		if err := uc.cache.InvalidatePages(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo invalidar el caché de páginas")
		}
	}
	return nil
}

// processImage decodifica y genera la variante completa y la miniatura, ambas
// JPEG.
func processImage(data []byte) (full, thumb []byte, err error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, err
	}
	full, err = encodeJPEG(resizeToWidth(img, maxImageWidth))
	if err != nil {
		return nil, nil, err
	}
	thumb, err = encodeJPEG(resizeToWidth(img, thumbWidth))
	if err != nil {
		return nil, nil, err
	}
	return full, thumb, nil
}

func resizeToWidth(img image.Image, width int) image.Image {
	if img.Bounds().Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// storageKey extrae la llave del objeto a partir de la URL pública; vacío si
// la URL no apunta al bucket propio (imágenes legacy de Airtable).
func storageKey(url string) string {
	i := strings.Index(url, "/vehiculos/")
	if i < 0 {
		return ""
	}
	return strings.TrimPrefix(path.Clean(url[i:]), "/")
}

func toPhotosResponse(v *entity.Vehicle) *dto.VehiclePhotosResponse {
	return &dto.VehiclePhotosResponse{
		OrdenCompra:  v.OrdenCompra,
		Titulo:       v.Titulo,
		FeatureImage: v.DisplayImage(),
		Gallery:      v.Gallery(),
		UsingR2:      v.UseR2Images || v.R2FeatureImage != "" || len(v.R2Gallery) > 0,
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}
