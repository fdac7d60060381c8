package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"invoicehub/internal/apierror"
	"invoicehub/internal/dto"
	"invoicehub/internal/infra"
	"invoicehub/internal/repository"
	"invoicehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentsHandler struct {
	svc            service.DocumentService
	docRepo        repository.DocumentRepository
	companyRepo    repository.CompanyRepository
	pdfStoragePath string
}

func NewDocumentsHandler(
	svc service.DocumentService,
	docRepo repository.DocumentRepository,
	companyRepo repository.CompanyRepository,
	pdfStoragePath string,
) *DocumentsHandler {
	return &DocumentsHandler{
		svc:            svc,
		docRepo:        docRepo,
		companyRepo:    companyRepo,
		pdfStoragePath: pdfStoragePath,
	}
}

// Create godoc
// @Summary      Create a document
// @Description  Creates a quotation, invoice, credit note or debit note in draft. Assigns the next sequential number for the type, snapshots the customer and resolves the currency.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateDocumentRequest true "Document data"
// @Success      201  {object} dto.DocumentResponse
// @Failure      422  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/documents [post]
func (h *DocumentsHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
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
// @Summary Fetch one document with items and audit trail
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document UUID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/documents/{id} [get]
func (h *DocumentsHandler) Get(c *gin.Context) {
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
// @Summary      List documents
// @Description  Paginated list filtered by type, status, customer and issue-date range.
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        type        query string false "quotation | invoice | credit_note | debit_note"
// @Param        status      query string false "Document status"
// @Param        customer_id query string false "Customer UUID"
// @Param        date_from   query string false "Issue date from (YYYY-MM-DD)"
// @Param        date_to     query string false "Issue date to (YYYY-MM-DD)"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.DocumentListResponse
// @Router       /v1/documents [get]
func (h *DocumentsHandler) List(c *gin.Context) {
	var filter dto.DocumentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	companyID := companyIDFromClaims(c)
	resp, err := h.svc.List(c.Request.Context(), companyID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list documents"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Edit a document
// @Description  Full edits in draft. Outside draft only notes, terms and dates are accepted; financial changes are rejected with 409 — use the amendment endpoint.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "Document UUID"
// @Param        body body dto.UpdateDocumentRequest true "Fields to change plus expected_version"
// @Success      200  {object} dto.DocumentResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/documents/{id} [put]
func (h *DocumentsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateDocumentRequest
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

// Transition godoc
// @Summary      Change document status
// @Description  Applies one step of the per-type status machine. Leaving draft freezes the financial fields and, when the customer has an email, queues PDF delivery.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                true "Document UUID"
// @Param        body body dto.TransitionRequest true "Target status plus expected_version"
// @Success      200  {object} dto.DocumentResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/documents/{id}/transition [post]
func (h *DocumentsHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.TransitionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID := companyIDFromClaims(c)
	resp, err := h.svc.Transition(c.Request.Context(), companyID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Amend godoc
// @Summary      Amend a frozen document
// @Description  The sanctioned post-freeze edit: replaces items and/or currency, optionally re-snapshots the customer, and appends one audit entry with the reason and a field-level diff.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string           true "Document UUID"
// @Param        body body dto.AmendRequest true "Amendment with reason and expected_version"
// @Success      200  {object} dto.DocumentResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/documents/{id}/amend [post]
func (h *DocumentsHandler) Amend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.AmendRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID := companyIDFromClaims(c)
	resp, err := h.svc.Amend(c.Request.Context(), companyID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadPDF godoc
// @Summary      Download the document PDF
// @Description  Serves the rendered PDF, generating it on the fly when the async pipeline has not produced one yet.
// @Tags         documents
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Document UUID"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/documents/{id}/pdf [get]
func (h *DocumentsHandler) DownloadPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	companyID := companyIDFromClaims(c)
	doc, err := h.docRepo.FindByID(c.Request.Context(), companyID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Resource not found"))
		return
	}

	path := filepath.Join(h.pdfStoragePath, doc.Number+".pdf")
	if _, err := os.Stat(path); err != nil {
		// Not rendered yet (or evicted) — render synchronously.
		company, err := h.companyRepo.FindByID(c.Request.Context(), companyID)
		if err != nil {
			c.JSON(http.StatusNotFound, apierror.New("Resource not found"))
			return
		}
		path, err = infra.GenerateDocumentPDF(doc, company, h.pdfStoragePath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, apierror.New("Could not render PDF"))
			return
		}
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Number+`.pdf"`)
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}
