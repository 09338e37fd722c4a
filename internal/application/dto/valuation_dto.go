package dto

import "github.com/shopspring/decimal"

// ValuationRequest datos del vehículo a valuar.
type ValuationRequest struct {
	Marca       string `json:"marca"`
	Modelo      string `json:"modelo"`
	AutoAno     int    `json:"autoano"`
	Version     string `json:"version,omitempty"`
	Kilometraje int    `json:"kilometraje"`
}

// ValuationResponse cotización de mercado. Los campos de banda solo se
// devuelven a usuarios con teléfono verificado; el resto recibe únicamente la
// oferta sugerida redondeada (teaser).
type ValuationResponse struct {
	SuggestedOffer  decimal.Decimal  `json:"suggested_offer"`
	HighMarketValue *decimal.Decimal `json:"high_market_value,omitempty"`
	LowMarketValue  *decimal.Decimal `json:"low_market_value,omitempty"`
	AvgDaysOnMarket int              `json:"avg_days_on_market,omitempty"`
	AvgKms          int              `json:"avg_kms,omitempty"`
	Gated           bool             `json:"gated"` // true = teaser sin bandas
}
