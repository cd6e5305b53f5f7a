package handlers

import (
	"facturo/internal/domain/catalogs/taxrate"
	"facturo/internal/infrastructure/http/v1/dto"
)

// TaxRateHTTPHandler shortens the generic handler signature.
type TaxRateHTTPHandler = CatalogHandler[
	*taxrate.TaxRate,
	dto.CreateTaxRateRequest,
	dto.UpdateTaxRateRequest,
]

// NewTaxRateHandler creates the configured generic handler.
func NewTaxRateHandler(base *BaseHandler, service *taxrate.Service) *TaxRateHTTPHandler {
	config := CatalogHandlerConfig[
		*taxrate.TaxRate,
		dto.CreateTaxRateRequest,
		dto.UpdateTaxRateRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "taxRate",

		MapCreateDTO: func(req dto.CreateTaxRateRequest) (*taxrate.TaxRate, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateTaxRateRequest, existing *taxrate.TaxRate) (*taxrate.TaxRate, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},

		MapToDTO: func(entity *taxrate.TaxRate) any {
			return dto.FromTaxRate(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
