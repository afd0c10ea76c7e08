package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ammiranda/category_service/models"
	"github.com/ammiranda/category_service/service"
)

// NewRouter wires the category API, health check and metrics endpoint
func NewRouter(svc *service.CategoryService, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(logger), Recoverer(logger))

	categoryHandler := NewCategoryHandler(svc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.Success(gin.H{"status": "ok"}, "healthy"))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/categories")
	{
		api.GET("", categoryHandler.GetAll)
		api.POST("", categoryHandler.Create)
		api.GET("/stats", categoryHandler.GetStatistics)
		api.GET("/audit", categoryHandler.Audit)
		api.GET("/:id", categoryHandler.GetByID)
		api.PUT("/:id", categoryHandler.Update)
		api.DELETE("/:id", categoryHandler.Delete)
		api.GET("/:id/path", categoryHandler.GetPath)
		api.GET("/:id/ancestors", categoryHandler.GetAncestors)
		api.GET("/:id/descendants", categoryHandler.GetDescendants)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.Failure(CodeNotFound, "route not found", c.Request.URL.Path))
	})

	return r
}
