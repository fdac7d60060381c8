package handler

import (
	"net/http"

	"invoicehub/internal/apierror"
	"invoicehub/internal/dto"
	"invoicehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CustomersHandler struct{ svc service.CustomerService }

func NewCustomersHandler(svc service.CustomerService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// Create godoc
// @Summary Create a customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateCustomerRequest true "Customer data"
// @Success 201 {object} dto.CustomerResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/customers [post]
func (h *CustomersHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID := companyIDFromClaims(c)
	resp, err := h.svc.Create(c.Request.Context(), companyID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Fetch one customer
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer UUID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/customers/{id} [get]
func (h *CustomersHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	companyID := companyIDFromClaims(c)
	resp, err := h.svc.Get(c.Request.Context(), companyID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary List company customers
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param include_inactive query bool false "Include deactivated customers"
// @Success 200 {array} dto.CustomerResponse
// @Router /v1/customers [get]
func (h *CustomersHandler) List(c *gin.Context) {
	companyID := companyIDFromClaims(c)
	includeInactive := c.Query("include_inactive") == "true"
	resp, err := h.svc.List(c.Request.Context(), companyID, includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list customers"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a customer
// @Description  Changes here never touch snapshots already embedded in documents.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "Customer UUID"
// @Param        body body dto.UpdateCustomerRequest true "Fields to change"
// @Success      200  {object} dto.CustomerResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/customers/{id} [put]
func (h *CustomersHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID := companyIDFromClaims(c)
	resp, err := h.svc.Update(c.Request.Context(), companyID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary Deactivate a customer
// @Tags customers
// @Security BearerAuth
// @Param id path string true "Customer UUID"
// @Success 204
// @Router /v1/customers/{id} [delete]
func (h *CustomersHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	companyID := companyIDFromClaims(c)
	if err := h.svc.Deactivate(c.Request.Context(), companyID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
