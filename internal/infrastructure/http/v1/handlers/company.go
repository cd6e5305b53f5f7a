package handlers

import (
	"facturo/internal/domain/catalogs/company"
	"facturo/internal/infrastructure/http/v1/dto"
)

// CompanyHTTPHandler shortens the generic handler signature.
type CompanyHTTPHandler = CatalogHandler[
	*company.Company,
	dto.CreateCompanyRequest,
	dto.UpdateCompanyRequest,
]

// NewCompanyHandler creates the configured generic handler.
func NewCompanyHandler(base *BaseHandler, service *company.Service) *CompanyHTTPHandler {
	config := CatalogHandlerConfig[
		*company.Company,
		dto.CreateCompanyRequest,
		dto.UpdateCompanyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "company",

		MapCreateDTO: func(req dto.CreateCompanyRequest) (*company.Company, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateCompanyRequest, existing *company.Company) (*company.Company, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},

		MapToDTO: func(entity *company.Company) any {
			return dto.FromCompany(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
