package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

type UserController interface {
	ListUsers(c *gin.Context)
	CreateUser(c *gin.Context)
}

type userController struct {
	users services.UserService
}

func NewUserController(users services.UserService) UserController {
	return &userController{users: users}
}

// ListUsers godoc
// @Summary List back-office users
// @Tags admin-users
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /api/v1/admin/users [get]
func (uc *userController) ListUsers(c *gin.Context) {
	users, err := uc.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary Create a back-office user
// @Description Restaurant admins may be assigned a restaurant that has no admin yet
// @Tags admin-users
// @Accept json
// @Produce json
// @Param user body services.CreateUserInput true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/users [post]
func (uc *userController) CreateUser(c *gin.Context) {
	var in services.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := uc.users.CreateUser(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
