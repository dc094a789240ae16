package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/product/service"
	"storefront-backend/internal/shared/response"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler - HTTP Handler for the product catalog
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// List - GET /products?keyword=&pageNumber=
func (h *Handler) List(c *gin.Context) {
	req := model.ListRequest{
		Keyword: c.Query("keyword"),
		Page:    1,
	}
	if pageStr := c.Query("pageNumber"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			req.Page = p
		}
	}

	result, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Products retrieved successfully", result, &response.Meta{
		Page:  result.Page,
		Pages: result.Pages,
		Total: result.Total,
	})
}

// Get - GET /products/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Product retrieved successfully", product)
}

// Create - POST /products (admin)
func (h *Handler) Create(c *gin.Context) {
	var req model.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	product, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/products/"+product.ID.String())
	response.Success(c, http.StatusCreated, "Product created", product)
}

// Update - PUT /products/:id (admin)
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	product, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Product updated", product)
}

// Delete - DELETE /products/:id (admin)
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Product deleted", nil)
}

// Export - GET /products/export (admin), streams an xlsx workbook
func (h *Handler) Export(c *gin.Context) {
	f, err := h.service.ExportExcel(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("products_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		logger.Error("failed to write excel export", err)
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.BadRequest(c, "Invalid product ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors

	switch {
	case errors.As(err, &validationErrs):
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", validationErrs)

	case errors.Is(err, model.ErrProductNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, model.ErrSlugTaken):
		response.ErrorResponse(c, http.StatusConflict, err.Error(), nil)

	default:
		logger.Error("product request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}
