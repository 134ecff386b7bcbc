package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RestaurantController interface {
	ListRestaurants(c *gin.Context)
	GetRestaurant(c *gin.Context)
	CreateRestaurant(c *gin.Context)
	UpdateRestaurant(c *gin.Context)
	DeleteRestaurant(c *gin.Context)
}

type restaurantController struct {
	restaurants services.RestaurantService
}

func NewRestaurantController(restaurants services.RestaurantService) RestaurantController {
	return &restaurantController{restaurants: restaurants}
}

// ListRestaurants godoc
// @Summary List restaurants
// @Description Enabled restaurants only; enabled=false includes disabled ones
// @Tags restaurants
// @Produce json
// @Param enabled query bool false "Set to false to include disabled restaurants"
// @Success 200 {array} models.Restaurant
// @Router /api/v1/public/restaurants [get]
func (rc *restaurantController) ListRestaurants(c *gin.Context) {
	includeDisabled := c.Query("enabled") == "false"
	restaurants, err := rc.restaurants.ListRestaurants(c.Request.Context(), includeDisabled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// GetRestaurant godoc
// @Summary Get a restaurant
// @Description Includes its categories and food count
// @Tags restaurants
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {object} models.Restaurant
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/restaurants/{id} [get]
func (rc *restaurantController) GetRestaurant(c *gin.Context) {
	restaurant, err := rc.restaurants.GetRestaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// CreateRestaurant godoc
// @Summary Create a restaurant
// @Tags admin-restaurants
// @Accept json
// @Produce json
// @Param restaurant body services.RestaurantInput true "Restaurant"
// @Success 201 {object} models.Restaurant
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/restaurants [post]
func (rc *restaurantController) CreateRestaurant(c *gin.Context) {
	var in services.RestaurantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	restaurant, err := rc.restaurants.CreateRestaurant(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, restaurant)
}

// UpdateRestaurant godoc
// @Summary Update a restaurant
// @Description Only the given fields change
// @Tags admin-restaurants
// @Accept json
// @Produce json
// @Param id path string true "Restaurant ID"
// @Param restaurant body services.RestaurantInput true "Restaurant"
// @Success 200 {object} models.Restaurant
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/restaurants/{id} [put]
func (rc *restaurantController) UpdateRestaurant(c *gin.Context) {
	var in services.RestaurantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	restaurant, err := rc.restaurants.UpdateRestaurant(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// DeleteRestaurant godoc
// @Summary Delete a restaurant
// @Description Refused while orders reference it
// @Tags admin-restaurants
// @Param id path string true "Restaurant ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/restaurants/{id} [delete]
func (rc *restaurantController) DeleteRestaurant(c *gin.Context) {
	if err := rc.restaurants.DeleteRestaurant(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
