package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/ammiranda/category_service/handlers"
	"github.com/ammiranda/category_service/models"
	"github.com/ammiranda/category_service/service"
)

const basePath = "/api/categories"

// Handler represents the Lambda handler with its dependencies
type Handler struct {
	svc *service.CategoryService
}

// NewHandler creates a new Handler over the category service
func NewHandler(svc *service.CategoryService) *Handler {
	return &Handler{
		svc: svc,
	}
}

// Handle processes API Gateway events
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	segments, ok := splitPath(request.Path)
	if !ok {
		return notFound(request.Path)
	}

	// Route the request based on HTTP method and path
	switch {
	case len(segments) == 0 && request.HTTPMethod == http.MethodGet:
		forest, err := h.svc.GetAll(ctx)
		return reply(http.StatusOK, forest, "categories retrieved", err)
	case len(segments) == 0 && request.HTTPMethod == http.MethodPost:
		return h.handleCreate(ctx, request)
	case len(segments) == 1 && segments[0] == "stats" && request.HTTPMethod == http.MethodGet:
		stats, err := h.svc.GetStatistics(ctx)
		return reply(http.StatusOK, stats, "statistics retrieved", err)
	case len(segments) == 1 && segments[0] == "audit" && request.HTTPMethod == http.MethodGet:
		violations, err := h.svc.Audit(ctx)
		return reply(http.StatusOK, map[string]interface{}{
			"valid":      len(violations) == 0,
			"violations": violations,
		}, "tree audited", err)
	case len(segments) == 0 || len(segments) > 2:
		return notFound(request.Path)
	}

	id, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil || id <= 0 {
		return respond(http.StatusBadRequest, models.Failure(handlers.CodeValidation, "invalid category id", segments[0]))
	}

	if len(segments) == 2 {
		if request.HTTPMethod != http.MethodGet {
			return notFound(request.Path)
		}
		switch segments[1] {
		case "path":
			path, err := h.svc.GetPath(ctx, id)
			return reply(http.StatusOK, path, "category path retrieved", err)
		case "ancestors":
			ancestors, err := h.svc.GetAncestors(ctx, id)
			return reply(http.StatusOK, ancestors, "ancestors retrieved", err)
		case "descendants":
			descendants, err := h.svc.GetDescendants(ctx, id)
			return reply(http.StatusOK, descendants, "descendants retrieved", err)
		}
		return notFound(request.Path)
	}

	switch request.HTTPMethod {
	case http.MethodGet:
		resp, err := h.svc.GetByID(ctx, id)
		return reply(http.StatusOK, resp, "category retrieved", err)
	case http.MethodPut:
		return h.handleUpdate(ctx, id, request)
	case http.MethodDelete:
		return h.handleDelete(ctx, id, request)
	}
	return notFound(request.Path)
}

func (h *Handler) handleCreate(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.CreateCategoryRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return respond(http.StatusBadRequest, models.Failure(handlers.CodeValidation, "invalid request body", err.Error()))
	}

	// Validate the request
	if err := req.Validate(); err != nil {
		return respond(http.StatusBadRequest, models.Failure(handlers.CodeValidation, "invalid request", err.Error()))
	}

	resp, err := h.svc.Create(ctx, &req)
	return reply(http.StatusCreated, resp, "category created", err)
}

func (h *Handler) handleUpdate(ctx context.Context, id int64, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.UpdateCategoryRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return respond(http.StatusBadRequest, models.Failure(handlers.CodeValidation, "invalid request body", err.Error()))
	}
	if err := req.Validate(); err != nil {
		return respond(http.StatusBadRequest, models.Failure(handlers.CodeValidation, "invalid request", err.Error()))
	}

	resp, err := h.svc.Update(ctx, id, &req)
	return reply(http.StatusOK, resp, "category updated", err)
}

func (h *Handler) handleDelete(ctx context.Context, id int64, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch mode := request.QueryStringParameters["mode"]; mode {
	case "", "cascade":
		resp, err := h.svc.Delete(ctx, id)
		return reply(http.StatusOK, resp, "category deleted", err)
	case "promote":
		resp, err := h.svc.Remove(ctx, id)
		return reply(http.StatusOK, resp, "category removed", err)
	default:
		return respond(http.StatusBadRequest, models.Failure(handlers.CodeValidation, "invalid delete mode", mode))
	}
}

// splitPath returns the segments after /api/categories, or false when the
// path is outside the category API
func splitPath(path string) ([]string, bool) {
	path = strings.TrimSuffix(path, "/")
	if path == basePath {
		return nil, true
	}
	rest, ok := strings.CutPrefix(path, basePath+"/")
	if !ok {
		return nil, false
	}
	return strings.Split(rest, "/"), true
}

// reply wraps data in a success envelope, or err in an error envelope
func reply(status int, data interface{}, message string, err error) (events.APIGatewayProxyResponse, error) {
	if err != nil {
		return respond(handlers.ErrorResponse(err))
	}
	return respond(status, models.Success(data, message))
}

func notFound(path string) (events.APIGatewayProxyResponse, error) {
	return respond(http.StatusNotFound, models.Failure(handlers.CodeNotFound, "route not found", path))
}

func respond(status int, body models.APIResponse) (events.APIGatewayProxyResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       fmt.Sprintf(`{"status":"error","message":"failed to marshal response: %v"}`, err),
		}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}, nil
}
