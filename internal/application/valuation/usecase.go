package valuation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/autos-trefa/trefa-api/internal/application/dto"
	"github.com/autos-trefa/trefa-api/internal/domain"
	"github.com/autos-trefa/trefa-api/internal/domain/repository"
)

// Quote es la cotización de mercado que regresa el proveedor de valuación.
type Quote struct {
	SuggestedOffer  decimal.Decimal
	HighMarketValue decimal.Decimal
	LowMarketValue  decimal.Decimal
	AvgDaysOnMarket int
	AvgKms          int
}

// Pricer puerto hacia el proveedor de valuación (Intelimotor).
type Pricer interface {
	Brands(ctx context.Context) ([]string, error)
	Models(ctx context.Context, brand string) ([]string, error)
	Years(ctx context.Context, brand, model string) ([]int, error)
	Quote(ctx context.Context, marca, modelo string, ano, kilometraje int, version string) (*Quote, error)
}

// ReportRenderer genera el reporte PDF de una cotización.
type ReportRenderer interface {
	Render(req dto.ValuationRequest, q *Quote) ([]byte, error)
}

// UseCase de valuación "vende tu auto": cotización con bandas de mercado
// reservadas a usuarios con teléfono verificado, más reporte PDF.
type UseCase struct {
	profiles repository.ProfileRepository
	pricer   Pricer
	renderer ReportRenderer
}

// NewUseCase construye el caso de uso.
func NewUseCase(profiles repository.ProfileRepository, pricer Pricer, renderer ReportRenderer) *UseCase {
	return &UseCase{profiles: profiles, pricer: pricer, renderer: renderer}
}

// Brands catálogo de marcas del proveedor.
func (uc *UseCase) Brands(ctx context.Context) ([]string, error) {
	return uc.pricer.Brands(ctx)
}

// Models catálogo de modelos de una marca.
func (uc *UseCase) Models(ctx context.Context, brand string) ([]string, error) {
	if brand == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.pricer.Models(ctx, brand)
}

// Years años disponibles de un modelo.
func (uc *UseCase) Years(ctx context.Context, brand, model string) ([]int, error) {
	if brand == "" || model == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.pricer.Years(ctx, brand, model)
}

// GetQuote cotiza el vehículo. Las bandas de mercado solo se devuelven cuando
// el perfil tiene el teléfono verificado; si no, la respuesta es un teaser
// con la oferta sugerida redondeada a miles.
func (uc *UseCase) GetQuote(ctx context.Context, userID string, in dto.ValuationRequest) (*dto.ValuationResponse, error) {
	if in.Marca == "" || in.Modelo == "" || in.AutoAno <= 0 {
		return nil, domain.ErrInvalidInput
	}
	q, err := uc.pricer.Quote(ctx, in.Marca, in.Modelo, in.AutoAno, in.Kilometraje, in.Version)
	if err != nil {
		return nil, err
	}

	verified, err := uc.phoneVerified(userID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return &dto.ValuationResponse{
			SuggestedOffer: roundToThousands(q.SuggestedOffer),
			Gated:          true,
		}, nil
	}
	return &dto.ValuationResponse{
		SuggestedOffer:  q.SuggestedOffer,
		HighMarketValue: &q.HighMarketValue,
		LowMarketValue:  &q.LowMarketValue,
		AvgDaysOnMarket: q.AvgDaysOnMarket,
		AvgKms:          q.AvgKms,
	}, nil
}

// GetReport genera el reporte PDF de la cotización. Requiere teléfono
// verificado.
func (uc *UseCase) GetReport(ctx context.Context, userID string, in dto.ValuationRequest) ([]byte, error) {
	verified, err := uc.phoneVerified(userID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, domain.ErrPhoneNotVerified
	}
	if in.Marca == "" || in.Modelo == "" || in.AutoAno <= 0 {
		return nil, domain.ErrInvalidInput
	}
	q, err := uc.pricer.Quote(ctx, in.Marca, in.Modelo, in.AutoAno, in.Kilometraje, in.Version)
	if err != nil {
		return nil, err
	}
	return uc.renderer.Render(in, q)
}

func (uc *UseCase) phoneVerified(userID string) (bool, error) {
	p, err := uc.profiles.GetByID(userID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, domain.ErrUserNotFound
	}
	return p.PhoneVerified, nil
}

func roundToThousands(d decimal.Decimal) decimal.Decimal {
	mil := decimal.NewFromInt(1000)
	return d.Div(mil).Round(0).Mul(mil)
}
