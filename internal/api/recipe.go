package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/kaintayo/backend/internal/middleware"
	"github.com/pageza/kaintayo/backend/internal/service"
	"github.com/pageza/kaintayo/backend/internal/types"
)

const passthroughContentType = "text/plain; charset=utf-8"

type RecipeHandler struct {
	recipeService service.IRecipeService
	logger        *slog.Logger
}

func NewRecipeHandler(recipeService service.IRecipeService, logger *slog.Logger) *RecipeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeHandler{
		recipeService: recipeService,
		logger:        logger,
	}
}

func (h *RecipeHandler) RegisterRoutes(router gin.IRouter) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.SearchRecipes)
		recipes.POST("/search", h.SearchRecipes)
	}
}

// ListRecipes forwards paging and filter parameters upstream and returns
// the normalized listing envelope.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	q := types.ListQuery{
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Category: c.Query("category"),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
	}

	result, err := h.recipeService.ListRecipes(c.Request.Context(), q)
	if err != nil {
		h.handleError(c, "list", err)
		return
	}
	if result.Passthrough {
		h.writePassthrough(c, result)
		return
	}

	c.JSON(result.StatusCode, types.ListRecipesResponse{
		Recipes:    result.Recipes,
		Pagination: result.Pagination,
		Total:      result.Total,
	})
}

// SearchRecipes runs a keyword search upstream and returns the bare
// normalized recipe list.
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}

	result, err := h.recipeService.SearchRecipes(c.Request.Context(), req.Keyword)
	if err != nil {
		h.handleError(c, "search", err)
		return
	}
	if result.Passthrough {
		h.writePassthrough(c, result)
		return
	}

	c.JSON(result.StatusCode, result.Recipes)
}

func (h *RecipeHandler) writePassthrough(c *gin.Context, result *service.RecipeResult) {
	contentType := result.ContentType
	if contentType == "" {
		contentType = passthroughContentType
	}
	c.Data(result.StatusCode, contentType, result.Raw)
}

func (h *RecipeHandler) handleError(c *gin.Context, operation string, err error) {
	h.logger.Error("recipe request failed",
		"operation", operation,
		"error", err,
		"request_id", middleware.RequestIDFrom(c))

	switch {
	case errors.Is(err, service.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
