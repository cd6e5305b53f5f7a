package handlers

import (
	"facturo/internal/domain/catalogs/counterparty"
	"facturo/internal/infrastructure/http/v1/dto"
)

// CounterpartyHTTPHandler shortens the generic handler signature.
type CounterpartyHTTPHandler = CatalogHandler[
	*counterparty.Counterparty,
	dto.CreateCounterpartyRequest,
	dto.UpdateCounterpartyRequest,
]

// NewCounterpartyHandler creates the configured generic handler.
func NewCounterpartyHandler(base *BaseHandler, service *counterparty.Service) *CounterpartyHTTPHandler {
	config := CatalogHandlerConfig[
		*counterparty.Counterparty,
		dto.CreateCounterpartyRequest,
		dto.UpdateCounterpartyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "counterparty",

		MapCreateDTO: func(req dto.CreateCounterpartyRequest) (*counterparty.Counterparty, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateCounterpartyRequest, existing *counterparty.Counterparty) (*counterparty.Counterparty, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},

		MapToDTO: func(entity *counterparty.Counterparty) any {
			return dto.FromCounterparty(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
