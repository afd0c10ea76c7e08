package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ammiranda/category_service/hierarchy"
	"github.com/ammiranda/category_service/models"
	"github.com/ammiranda/category_service/service"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	svc *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler instance
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		svc: svc,
	}
}

// parseID reads the :id path parameter, replying 400 when it is not a positive integer
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.Failure(CodeValidation, "invalid category id", c.Param("id")))
		return 0, false
	}
	return id, true
}

// GetAll returns the whole forest of categories
func (h *CategoryHandler) GetAll(c *gin.Context) {
	forest, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Success(forest, "categories retrieved"))
}

// GetByID returns a single category with its nested children
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Success(resp, "category retrieved"))
}

// Create creates a new category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(CodeValidation, "invalid request body", err.Error()))
		return
	}

	// Validate the request
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(CodeValidation, "invalid request", err.Error()))
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.Success(resp, "category created"))
}

// Update renames, reorders or moves a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(CodeValidation, "invalid request body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(CodeValidation, "invalid request", err.Error()))
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Success(resp, "category updated"))
}

// Delete removes a category. By default its whole subtree goes with it;
// with ?mode=promote only the category is removed and its children move up.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	switch mode := c.DefaultQuery("mode", "cascade"); mode {
	case "cascade":
		resp, err := h.svc.Delete(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.Success(resp, "category deleted"))
	case "promote":
		resp, err := h.svc.Remove(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.Success(resp, "category removed"))
	default:
		c.JSON(http.StatusBadRequest, models.Failure(CodeValidation, "invalid delete mode", mode))
	}
}

// GetPath returns the breadcrumb of a category
func (h *CategoryHandler) GetPath(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Success(resp, "category path retrieved"))
}

// GetAncestors returns the ancestors of a category, root first
func (h *CategoryHandler) GetAncestors(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetAncestors(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Success(resp, "ancestors retrieved"))
}

// GetDescendants returns every category below a category
func (h *CategoryHandler) GetDescendants(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetDescendants(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Success(resp, "descendants retrieved"))
}

// GetStatistics summarises the tree
func (h *CategoryHandler) GetStatistics(c *gin.Context) {
	stats, err := h.svc.GetStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Success(stats, "statistics retrieved"))
}

// Audit lists structural violations in the stored tree
func (h *CategoryHandler) Audit(c *gin.Context) {
	violations, err := h.svc.Audit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Success(gin.H{
		"valid":      len(violations) == 0,
		"violations": violations,
	}, "tree audited"))
}

// errorStatus maps an error kind to its HTTP status
func errorStatus(kind hierarchy.Kind) int {
	switch kind {
	case hierarchy.KindNotFound:
		return http.StatusNotFound
	case hierarchy.KindConflict:
		return http.StatusConflict
	case hierarchy.KindStructuralViolation, hierarchy.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error codes that do not come from the hierarchy package
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
	CodeNotFound   = "NOT_FOUND"
)

// ErrorResponse maps err to an HTTP status and error envelope. Unexpected
// errors are reported without their details.
func ErrorResponse(err error) (int, models.APIResponse) {
	if herr, ok := hierarchy.AsError(err); ok {
		return errorStatus(herr.Kind), models.Failure(herr.Code, herr.Message, herr.Details)
	}
	return http.StatusInternalServerError, models.Failure(CodeInternal, "internal server error", "")
}

func respondError(c *gin.Context, err error) {
	status, resp := ErrorResponse(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, resp)
}
