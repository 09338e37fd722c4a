// Package pdf implementa el reporte gráfico de la cotización "vende tu auto".
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: AUTOS TREFA  │  Fecha de cotización                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  VEHÍCULO: Marca Modelo Año / Versión / Kilometraje          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OFERTA SUGERIDA (destacada)                                 │
//	│  Banda de mercado: valor bajo ── valor alto                  │
//	│  Días promedio en mercado / Kms promedio comparables         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda de vigencia y contacto                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/application/valuation"
)

var (
	colorPrimary = &props.Color{Red: 214, Green: 40, Blue: 40}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ valuation.ReportRenderer = (*ValuationReport)(nil)

// ValuationReport implementa valuation.ReportRenderer usando Maroto v2.
type ValuationReport struct{}

// NewValuationReport construye el generador.
func NewValuationReport() *ValuationReport { return &ValuationReport{} }

// Render genera el PDF de la cotización y devuelve sus bytes.
func (g *ValuationReport) Render(req dto.ValuationRequest, q *valuation.Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Cotización de tu auto", true).
		WithAuthor("AUTOS TREFA", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(vehicleRows(req)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(offerRows(q)...)
	m.AddRows(line.NewRow(6))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generar PDF de cotización: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow() core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("AUTOS TREFA", props.Text{
				Size: 18, Style: fontstyle.Bold, Color: colorPrimary, Top: 2,
			}),
			text.New("Cotización de compra de tu auto", props.Text{
				Size: 9, Color: colorGray, Top: 10,
			}),
		),
		col.New(4).Add(
			text.New(time.Now().Format("02/01/2006"), props.Text{
				Size: 10, Align: align.Right, Top: 4,
			}),
		),
	)
}

func vehicleRows(req dto.ValuationRequest) []core.Row {
	title := fmt.Sprintf("%s %s %d", req.Marca, req.Modelo, req.AutoAno)
	rows := []core.Row{
		row.New(10).Add(col.New(12).Add(
			text.New(title, props.Text{Size: 14, Style: fontstyle.Bold, Top: 2}),
		)),
	}
	detail := fmt.Sprintf("Kilometraje: %s km", formatInt(req.Kilometraje))
	if req.Version != "" {
		detail = fmt.Sprintf("Versión: %s  ·  %s", req.Version, detail)
	}
	rows = append(rows, row.New(7).Add(col.New(12).Add(
		text.New(detail, props.Text{Size: 10, Color: colorGray}),
	)))
	return rows
}

func offerRows(q *valuation.Quote) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New("Oferta sugerida", props.Text{Size: 10, Color: colorGray, Top: 2}),
		)),
		row.New(14).Add(col.New(12).Add(
			text.New(formatMoney(q.SuggestedOffer), props.Text{
				Size: 24, Style: fontstyle.Bold, Color: colorPrimary,
			}),
		)),
		row.New(8).Add(
			col.New(6).Add(text.New(
				fmt.Sprintf("Valor bajo de mercado: %s", formatMoney(q.LowMarketValue)),
				props.Text{Size: 10},
			)),
			col.New(6).Add(text.New(
				fmt.Sprintf("Valor alto de mercado: %s", formatMoney(q.HighMarketValue)),
				props.Text{Size: 10, Align: align.Right},
			)),
		),
	}
	if q.AvgDaysOnMarket > 0 || q.AvgKms > 0 {
		rows = append(rows, row.New(8).Add(
			col.New(6).Add(text.New(
				fmt.Sprintf("Días promedio en mercado: %d", q.AvgDaysOnMarket),
				props.Text{Size: 9, Color: colorGray},
			)),
			col.New(6).Add(text.New(
				fmt.Sprintf("Kilometraje promedio comparable: %s km", formatInt(q.AvgKms)),
				props.Text{Size: 9, Color: colorGray, Align: align.Right},
			)),
		))
	}
	return rows
}

func footerRow() core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New("Cotización informativa con vigencia de 7 días, sujeta a inspección física del vehículo.", props.Text{
			Size: 8, Color: colorGray,
		}),
		text.New("AUTOS TREFA · Monterrey, Guadalupe, Reynosa y Saltillo · trefa.mx", props.Text{
			Size: 8, Color: colorGray, Top: 5,
		}),
	))
}

func formatMoney(d decimal.Decimal) string {
	return "$" + formatIntString(d.Round(0).String())
}

func formatInt(n int) string {
	return formatIntString(fmt.Sprint(n))
}

// formatIntString agrega separador de miles a un entero en texto.
func formatIntString(s string) string {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
