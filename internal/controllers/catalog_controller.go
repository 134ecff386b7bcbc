package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CatalogController serves foods and categories
type CatalogController interface {
	ListFoods(c *gin.Context)
	RestaurantMenu(c *gin.Context)
	GetFood(c *gin.Context)
	CreateFood(c *gin.Context)
	UpdateFood(c *gin.Context)
	DeleteFood(c *gin.Context)
	ListCategories(c *gin.Context)
	CreateCategory(c *gin.Context)
	UpdateCategory(c *gin.Context)
	DeleteCategory(c *gin.Context)
}

type catalogController struct {
	catalog services.CatalogService
}

func NewCatalogController(catalog services.CatalogService) CatalogController {
	return &catalogController{catalog: catalog}
}

func foodFilterFrom(c *gin.Context) (services.FoodFilter, bool) {
	filter := services.FoodFilter{
		RestaurantID: c.Query("restaurantId"),
		CategoryID:   c.Query("categoryId"),
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "available must be true or false"))
			return filter, false
		}
		filter.Available = &available
	}
	return filter, true
}

// ListFoods godoc
// @Summary List foods
// @Description Only available foods unless available=false is given
// @Tags foods
// @Produce json
// @Param restaurantId query string false "Filter by restaurant"
// @Param categoryId query string false "Filter by category"
// @Param available query bool false "Filter by availability"
// @Success 200 {array} models.Food
// @Failure 400 {object} models.APIError
// @Router /api/v1/public/foods [get]
func (cc *catalogController) ListFoods(c *gin.Context) {
	filter, ok := foodFilterFrom(c)
	if !ok {
		return
	}
	cc.listFoods(c, filter)
}

// RestaurantMenu godoc
// @Summary Menu of a restaurant
// @Tags foods
// @Produce json
// @Param id path string true "Restaurant ID"
// @Param categoryId query string false "Filter by category"
// @Success 200 {array} models.Food
// @Router /api/v1/public/restaurants/{id}/foods [get]
func (cc *catalogController) RestaurantMenu(c *gin.Context) {
	filter, ok := foodFilterFrom(c)
	if !ok {
		return
	}
	filter.RestaurantID = c.Param("id")
	cc.listFoods(c, filter)
}

func (cc *catalogController) listFoods(c *gin.Context, filter services.FoodFilter) {
	foods, err := cc.catalog.ListFoods(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

// GetFood godoc
// @Summary Get a food
// @Tags foods
// @Produce json
// @Param id path string true "Food ID"
// @Success 200 {object} models.Food
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/foods/{id} [get]
func (cc *catalogController) GetFood(c *gin.Context) {
	food, err := cc.catalog.GetFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// CreateFood godoc
// @Summary Create a food
// @Tags admin-foods
// @Accept json
// @Produce json
// @Param food body services.FoodInput true "Food"
// @Success 201 {object} models.Food
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/foods [post]
func (cc *catalogController) CreateFood(c *gin.Context) {
	var in services.FoodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	food, err := cc.catalog.CreateFood(c.Request.Context(), middleware.CurrentScope(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

// UpdateFood godoc
// @Summary Update a food
// @Tags admin-foods
// @Accept json
// @Produce json
// @Param id path string true "Food ID"
// @Param food body services.FoodInput true "Food"
// @Success 200 {object} models.Food
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/foods/{id} [put]
func (cc *catalogController) UpdateFood(c *gin.Context) {
	var in services.FoodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	food, err := cc.catalog.UpdateFood(c.Request.Context(), middleware.CurrentScope(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// DeleteFood godoc
// @Summary Delete a food
// @Description Soft delete; past orders keep showing the food
// @Tags admin-foods
// @Param id path string true "Food ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/foods/{id} [delete]
func (cc *catalogController) DeleteFood(c *gin.Context) {
	if err := cc.catalog.DeleteFood(c.Request.Context(), middleware.CurrentScope(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Param restaurantId query string false "Filter by restaurant"
// @Success 200 {array} models.Category
// @Router /api/v1/public/categories [get]
func (cc *catalogController) ListCategories(c *gin.Context) {
	categories, err := cc.catalog.ListCategories(c.Request.Context(), c.Query("restaurantId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags admin-categories
// @Accept json
// @Produce json
// @Param category body services.CategoryInput true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/categories [post]
func (cc *catalogController) CreateCategory(c *gin.Context) {
	var in services.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := cc.catalog.CreateCategory(c.Request.Context(), middleware.CurrentScope(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory godoc
// @Summary Rename a category
// @Tags admin-categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param category body services.CategoryInput true "Category"
// @Success 200 {object} models.Category
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/categories/{id} [put]
func (cc *catalogController) UpdateCategory(c *gin.Context) {
	var in services.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := cc.catalog.UpdateCategory(c.Request.Context(), middleware.CurrentScope(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags admin-categories
// @Param id path string true "Category ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/categories/{id} [delete]
func (cc *catalogController) DeleteCategory(c *gin.Context) {
	if err := cc.catalog.DeleteCategory(c.Request.Context(), middleware.CurrentScope(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
