package handler

import (
	"net/http"

	"invoicehub/internal/dto"
	"invoicehub/internal/service"

	"github.com/gin-gonic/gin"
)

type CompaniesHandler struct{ svc service.CompanyService }

func NewCompaniesHandler(svc service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{svc: svc}
}

// Get godoc
// @Summary      Company settings
// @Description  Returns the caller's company with prefixes and the read-only numbering counters.
// @Tags         company
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CompanyResponse
// @Router       /v1/company [get]
func (h *CompaniesHandler) Get(c *gin.Context) {
	companyID := companyIDFromClaims(c)
	resp, err := h.svc.Get(c.Request.Context(), companyID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update company settings
// @Description  Name, tax id, address, default currency and number prefixes. The counters themselves cannot be written.
// @Tags         company
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.UpdateCompanyRequest true "Settings to change"
// @Success      200  {object} dto.CompanyResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/company [put]
func (h *CompaniesHandler) Update(c *gin.Context) {
	var req dto.UpdateCompanyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID := companyIDFromClaims(c)
	resp, err := h.svc.Update(c.Request.Context(), companyID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
