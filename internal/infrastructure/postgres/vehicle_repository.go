package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/autos-trefa/trefa-api/internal/domain/entity"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

const vehicleColumns = `id, slug, ordencompra, record_id, titulo, descripcion, meta_descripcion,
	marca, modelo, autoano, precio, kilometraje, transmision, combustible, carroceria,
	cilindros, motor, enganchemin, enganche_recomendado, mensualidad_minima,
	mensualidad_recomendada, plazomax, r2_feature_image, r2_gallery, use_r2_images,
	feature_image, feature_image_url, galeria_exterior, fotos_exterior_url,
	galeria_interior, fotos_interior_url, ubicacion, garantia, vendido, separado,
	ordenstatus, clasificacionid, promociones, view_count, ingreso_inventario, rezago,
	raw_data, created_at, updated_at`

// VehicleRepo implementación del puerto VehicleRepository sobre inventario_cache.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

// GetBySlug obtiene un vehículo por slug exacto.
func (r *VehicleRepo) GetBySlug(slug string) (*entity.Vehicle, error) {
	return r.getOne(`SELECT `+vehicleColumns+` FROM inventario_cache WHERE slug = $1`, slug)
}

// GetBySlugFuzzy busca por prefijo/sufijo ILIKE restringido a vehículos
// Comprado; cubre slugs con sufijo de desambiguación.
func (r *VehicleRepo) GetBySlugFuzzy(slug string) (*entity.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + ` FROM inventario_cache
		WHERE ordenstatus = 'Comprado' AND (slug ILIKE $1 || '-%' OR $1 ILIKE slug || '-%')
		ORDER BY length(slug) LIMIT 1`
	return r.getOne(query, slug)
}

// GetByOrdenCompra obtiene por número de orden de compra.
func (r *VehicleRepo) GetByOrdenCompra(ordenCompra string) (*entity.Vehicle, error) {
	return r.getOne(`SELECT `+vehicleColumns+` FROM inventario_cache WHERE ordencompra = $1`, ordenCompra)
}

// GetByRecordID obtiene por id de registro de la fuente externa.
func (r *VehicleRepo) GetByRecordID(recordID string) (*entity.Vehicle, error) {
	return r.getOne(`SELECT `+vehicleColumns+` FROM inventario_cache WHERE record_id = $1`, recordID)
}

// List devuelve una página del catálogo público con el total filtrado. Solo
// vehículos Comprado no vendidos.
func (r *VehicleRepo) List(filters entity.VehicleFilters, limit, offset int) ([]*entity.Vehicle, int, error) {
	where, args := buildVehicleWhere(filters)

	var total int
	countQuery := `SELECT count(*) FROM inventario_cache ` + where
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vehicles: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM inventario_cache %s %s LIMIT $%d OFFSET $%d`,
		vehicleColumns, where, orderClause(filters.OrderBy), len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []*entity.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}
	return out, total, nil
}

func buildVehicleWhere(f entity.VehicleFilters) (string, []any) {
	conds := []string{`ordenstatus = 'Comprado'`, `NOT vendido`}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.HideSeparado {
		conds = append(conds, `NOT separado`)
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf(`(titulo ILIKE %s OR marca ILIKE %s OR modelo ILIKE %s)`, p, p, p))
	}
	if len(f.Marca) > 0 {
		conds = append(conds, `marca = ANY(`+arg(f.Marca)+`)`)
	}
	if len(f.AutoAno) > 0 {
		conds = append(conds, `autoano = ANY(`+arg(f.AutoAno)+`)`)
	}
	if len(f.Transmision) > 0 {
		conds = append(conds, `transmision = ANY(`+arg(f.Transmision)+`)`)
	}
	if len(f.Combustible) > 0 {
		conds = append(conds, `combustible = ANY(`+arg(f.Combustible)+`)`)
	}
	if len(f.Carroceria) > 0 {
		// El tipo de carrocería vive en dos columnas según la época del
		// registro: texto libre en carroceria y etiquetas en clasificacionid.
		ors := make([]string, 0, len(f.Carroceria)+1)
		for _, c := range f.Carroceria {
			ors = append(ors, `carroceria ILIKE `+arg("%"+c+"%"))
		}
		ors = append(ors, `clasificacionid && `+arg(f.Carroceria))
		conds = append(conds, `(`+strings.Join(ors, " OR ")+`)`)
	}
	if len(f.Garantia) > 0 {
		conds = append(conds, `garantia = ANY(`+arg(f.Garantia)+`)`)
	}
	if len(f.Ubicacion) > 0 {
		conds = append(conds, `ubicacion && `+arg(f.Ubicacion))
	}
	if len(f.Promociones) > 0 {
		conds = append(conds, `promociones && `+arg(f.Promociones))
	}
	if f.MinPrecio.IsPositive() {
		conds = append(conds, `precio >= `+arg(f.MinPrecio))
	}
	if f.MaxPrecio.IsPositive() {
		conds = append(conds, `precio <= `+arg(f.MaxPrecio))
	}
	if f.MinEnganche.IsPositive() {
		conds = append(conds, `enganchemin >= `+arg(f.MinEnganche))
	}
	if f.MaxEnganche.IsPositive() {
		conds = append(conds, `enganchemin <= `+arg(f.MaxEnganche))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(orderBy string) string {
	switch orderBy {
	case "price-asc":
		return "ORDER BY precio ASC"
	case "price-desc":
		return "ORDER BY precio DESC"
	case "year-desc":
		return "ORDER BY autoano DESC"
	case "year-asc":
		return "ORDER BY autoano ASC"
	case "mileage-asc":
		return "ORDER BY kilometraje ASC"
	case "newest":
		return "ORDER BY ingreso_inventario DESC NULLS LAST"
	default:
		// relevance: recién ingresados primero, rezagos al final
		return "ORDER BY rezago ASC, ingreso_inventario DESC NULLS LAST, id DESC"
	}
}

// ListSlugs lista los slugs de todos los vehículos publicados (sitemap).
func (r *VehicleRepo) ListSlugs() ([]string, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT slug FROM inventario_cache WHERE ordenstatus = 'Comprado' AND NOT vendido AND slug <> '' ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list slugs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSlugsLike devuelve el slug base y sus variantes con sufijo, excluyendo
// opcionalmente una ordencompra.
func (r *VehicleRepo) ListSlugsLike(base, excludeOrdenCompra string) ([]string, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT slug FROM inventario_cache WHERE (slug = $1 OR slug LIKE $1 || '-%') AND ordencompra <> $2`,
		base, excludeOrdenCompra,
	)
	if err != nil {
		return nil, fmt.Errorf("list slugs like: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FilterOptions agrega los valores distintos disponibles en el catálogo.
func (r *VehicleRepo) FilterOptions() (*entity.FilterOptions, error) {
	opts := &entity.FilterOptions{}

	if err := r.distinctStrings(`marca`, &opts.Marcas); err != nil {
		return nil, err
	}
	if err := r.distinctStrings(`transmision`, &opts.Transmisiones); err != nil {
		return nil, err
	}
	if err := r.distinctStrings(`combustible`, &opts.Combustibles); err != nil {
		return nil, err
	}
	if err := r.distinctStrings(`carroceria`, &opts.Carrocerias); err != nil {
		return nil, err
	}
	if err := r.distinctStrings(`garantia`, &opts.Garantias); err != nil {
		return nil, err
	}

	rows, err := r.q.Query(context.Background(),
		`SELECT DISTINCT autoano FROM inventario_cache WHERE ordenstatus = 'Comprado' AND NOT vendido AND autoano > 0 ORDER BY autoano DESC`)
	if err != nil {
		return nil, fmt.Errorf("filter options años: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a int
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		opts.Anos = append(opts.Anos, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.distinctArrayValues(`ubicacion`, &opts.Ubicaciones); err != nil {
		return nil, err
	}
	if err := r.distinctArrayValues(`promociones`, &opts.Promociones); err != nil {
		return nil, err
	}
	return opts, nil
}

func (r *VehicleRepo) distinctStrings(column string, dest *[]string) error {
	query := fmt.Sprintf(
		`SELECT DISTINCT %s FROM inventario_cache WHERE ordenstatus = 'Comprado' AND NOT vendido AND %s <> '' ORDER BY %s`,
		column, column, column)
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return fmt.Errorf("filter options %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		*dest = append(*dest, s)
	}
	return rows.Err()
}

func (r *VehicleRepo) distinctArrayValues(column string, dest *[]string) error {
	query := fmt.Sprintf(
		`SELECT DISTINCT unnest(%s) AS v FROM inventario_cache WHERE ordenstatus = 'Comprado' AND NOT vendido ORDER BY v`,
		column)
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return fmt.Errorf("filter options %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		if s != "" {
			*dest = append(*dest, s)
		}
	}
	return rows.Err()
}

// UpdateEditable persiste únicamente los campos editables del panel admin.
func (r *VehicleRepo) UpdateEditable(v *entity.Vehicle) error {
	query := `
		UPDATE inventario_cache SET mensualidad_minima = $2, mensualidad_recomendada = $3,
			ubicacion = $4, garantia = $5, carroceria = $6, kilometraje = $7,
			transmision = $8, ordenstatus = $9, promociones = $10, updated_at = now()
		WHERE ordencompra = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		v.OrdenCompra, v.MensualidadMinima, v.MensualidadRecomendada, v.Ubicacion,
		v.Garantia, v.Carroceria, v.Kilometraje, v.Transmision, v.OrdenStatus, v.Promociones,
	)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update vehicle: ordencompra %s no existe", v.OrdenCompra)
	}
	return nil
}

// UpdateImages persiste todas las fuentes de imagen del vehículo.
func (r *VehicleRepo) UpdateImages(v *entity.Vehicle) error {
	query := `
		UPDATE inventario_cache SET r2_feature_image = $2, r2_gallery = $3, use_r2_images = $4,
			feature_image = $5, feature_image_url = $6, galeria_exterior = $7,
			fotos_exterior_url = $8, galeria_interior = $9, fotos_interior_url = $10,
			updated_at = now()
		WHERE ordencompra = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		v.OrdenCompra, v.R2FeatureImage, v.R2Gallery, v.UseR2Images, v.FeatureImage,
		v.FeatureImageURL, v.GaleriaExterior, v.FotosExteriorURL, v.GaleriaInterior, v.FotosInteriorURL,
	)
	if err != nil {
		return fmt.Errorf("update vehicle images: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update vehicle images: ordencompra %s no existe", v.OrdenCompra)
	}
	return nil
}

// IncrementViewCount suma una vista.
func (r *VehicleRepo) IncrementViewCount(ordenCompra string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE inventario_cache SET view_count = view_count + 1 WHERE ordencompra = $1`,
		ordenCompra,
	)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// Upsert inserta o actualiza por record_id (worker de sincronización).
func (r *VehicleRepo) Upsert(v *entity.Vehicle) error {
	query := `
		INSERT INTO inventario_cache (slug, ordencompra, record_id, titulo, descripcion,
			meta_descripcion, marca, modelo, autoano, precio, kilometraje, transmision,
			combustible, carroceria, cilindros, motor, enganchemin, enganche_recomendado,
			mensualidad_minima, mensualidad_recomendada, plazomax, r2_feature_image,
			r2_gallery, use_r2_images, feature_image, feature_image_url, galeria_exterior,
			fotos_exterior_url, galeria_interior, fotos_interior_url, ubicacion, garantia,
			vendido, separado, ordenstatus, clasificacionid, promociones, ingreso_inventario,
			rezago, raw_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33,
			$34, $35, $36, $37, $38, $39, $40, now(), now())
		ON CONFLICT (record_id) DO UPDATE SET
			slug = EXCLUDED.slug, ordencompra = EXCLUDED.ordencompra, titulo = EXCLUDED.titulo,
			descripcion = EXCLUDED.descripcion, meta_descripcion = EXCLUDED.meta_descripcion,
			marca = EXCLUDED.marca, modelo = EXCLUDED.modelo, autoano = EXCLUDED.autoano,
			precio = EXCLUDED.precio, kilometraje = EXCLUDED.kilometraje,
			transmision = EXCLUDED.transmision, combustible = EXCLUDED.combustible,
			carroceria = EXCLUDED.carroceria, cilindros = EXCLUDED.cilindros,
			motor = EXCLUDED.motor, enganchemin = EXCLUDED.enganchemin,
			enganche_recomendado = EXCLUDED.enganche_recomendado,
			mensualidad_minima = EXCLUDED.mensualidad_minima,
			mensualidad_recomendada = EXCLUDED.mensualidad_recomendada,
			plazomax = EXCLUDED.plazomax, feature_image = EXCLUDED.feature_image,
			feature_image_url = EXCLUDED.feature_image_url,
			galeria_exterior = EXCLUDED.galeria_exterior,
			fotos_exterior_url = EXCLUDED.fotos_exterior_url,
			galeria_interior = EXCLUDED.galeria_interior,
			fotos_interior_url = EXCLUDED.fotos_interior_url,
			ubicacion = EXCLUDED.ubicacion, garantia = EXCLUDED.garantia,
			vendido = EXCLUDED.vendido, separado = EXCLUDED.separado,
			ordenstatus = EXCLUDED.ordenstatus, clasificacionid = EXCLUDED.clasificacionid,
			promociones = EXCLUDED.promociones,
			ingreso_inventario = EXCLUDED.ingreso_inventario, rezago = EXCLUDED.rezago,
			raw_data = EXCLUDED.raw_data, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		v.Slug, v.OrdenCompra, v.RecordID, v.Titulo, v.Descripcion, v.MetaDescripcion,
		v.Marca, v.Modelo, v.AutoAno, v.Precio, v.Kilometraje, v.Transmision, v.Combustible,
		v.Carroceria, v.Cilindros, v.Motor, v.EngancheMin, v.EngancheRecomendado,
		v.MensualidadMinima, v.MensualidadRecomendada, v.PlazoMax, v.R2FeatureImage,
		v.R2Gallery, v.UseR2Images, v.FeatureImage, v.FeatureImageURL, v.GaleriaExterior,
		v.FotosExteriorURL, v.GaleriaInterior, v.FotosInteriorURL, v.Ubicacion, v.Garantia,
		v.Vendido, v.Separado, v.OrdenStatus, v.ClasificacionID, v.Promociones,
		v.IngresoInventario, v.Rezago, v.RawData,
	)
	if err != nil {
		return fmt.Errorf("upsert vehicle: %w", err)
	}
	return nil
}

// Las columnas R2 no se pisan en el upsert del sync: esas imágenes se
// administran desde el panel y la fuente externa no las conoce.

// MarkMissing marca como vendidos los vehículos que ya no existen en la
// fuente externa. Devuelve cuántas filas cambió.
func (r *VehicleRepo) MarkMissing(presentRecordIDs []string) (int, error) {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE inventario_cache SET vendido = true, ordenstatus = 'Vendido', updated_at = now()
		 WHERE record_id <> '' AND ordenstatus = 'Comprado' AND record_id <> ALL($1)`,
		presentRecordIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("mark missing: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// ListMissingPhotos vehículos publicados sin imagen principal o sin galería.
func (r *VehicleRepo) ListMissingPhotos(limit int) ([]*entity.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + ` FROM inventario_cache
		WHERE ordenstatus = 'Comprado' AND NOT vendido AND (
			(r2_feature_image = '' AND feature_image = '' AND feature_image_url = ''
				AND cardinality(fotos_exterior_url) = 0 AND cardinality(galeria_exterior) = 0)
			OR (cardinality(r2_gallery) = 0 AND cardinality(fotos_exterior_url) = 0
				AND cardinality(galeria_exterior) = 0 AND cardinality(galeria_interior) = 0)
		)
		ORDER BY ingreso_inventario DESC NULLS LAST
		LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list missing photos: %w", err)
	}
	defer rows.Close()

	var out []*entity.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VehicleRepo) getOne(query string, args ...any) (*entity.Vehicle, error) {
	v, err := scanVehicle(r.q.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func scanVehicle(row pgx.Row) (*entity.Vehicle, error) {
	var v entity.Vehicle
	err := row.Scan(
		&v.ID, &v.Slug, &v.OrdenCompra, &v.RecordID, &v.Titulo, &v.Descripcion,
		&v.MetaDescripcion, &v.Marca, &v.Modelo, &v.AutoAno, &v.Precio, &v.Kilometraje,
		&v.Transmision, &v.Combustible, &v.Carroceria, &v.Cilindros, &v.Motor,
		&v.EngancheMin, &v.EngancheRecomendado, &v.MensualidadMinima, &v.MensualidadRecomendada,
		&v.PlazoMax, &v.R2FeatureImage, &v.R2Gallery, &v.UseR2Images, &v.FeatureImage,
		&v.FeatureImageURL, &v.GaleriaExterior, &v.FotosExteriorURL, &v.GaleriaInterior,
		&v.FotosInteriorURL, &v.Ubicacion, &v.Garantia, &v.Vendido, &v.Separado,
		&v.OrdenStatus, &v.ClasificacionID, &v.Promociones, &v.ViewCount,
		&v.IngresoInventario, &v.Rezago, &v.RawData, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
