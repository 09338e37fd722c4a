package dto

// VehiclePhotosResponse estado de imágenes de un vehículo tal como lo ve el
// panel admin: la fuente R2 siempre manda cuando existe.
type VehiclePhotosResponse struct {
	OrdenCompra  string   `json:"ordencompra"`
	Titulo       string   `json:"titulo"`
	FeatureImage string   `json:"feature_image"`
	Gallery      []string `json:"gallery"`
	UsingR2      bool     `json:"using_r2"`
}

// SetFeaturedRequest promueve una URL de la galería a imagen principal.
type SetFeaturedRequest struct {
	URL string `json:"url"`
}

// DeletePhotoRequest elimina una URL de todas las fuentes de imagen.
type DeletePhotoRequest struct {
	URL string `json:"url"`
}

// UploadPhotosResponse resultado de una subida multipart.
type UploadPhotosResponse struct {
	Uploaded []string `json:"uploaded"`
	Featured string   `json:"featured,omitempty"`
}

// MissingPhotosItem vehículo sin imagen principal o sin galería.
type MissingPhotosItem struct {
	OrdenCompra     string `json:"ordencompra"`
	Titulo          string `json:"titulo"`
	HasFeatureImage bool   `json:"has_feature_image"`
	HasGallery      bool   `json:"has_gallery"`
}

// MissingPhotosResponse reporte para el panel admin.
type MissingPhotosResponse struct {
	Items []MissingPhotosItem `json:"items"`
	Total int                 `json:"total"`
}
