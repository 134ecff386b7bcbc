package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ClientController interface {
	CreateClient(c *gin.Context)
	ListClients(c *gin.Context)
	DeleteClient(c *gin.Context)
}

type clientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) ClientController {
	return &clientController{clientService: clientService}
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Register an integration client. The secret is only returned here.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body services.ClientInput true "Client details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/clients [post]
func (cc *clientController) CreateClient(c *gin.Context) {
	var in services.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	registered, err := cc.clientService.CreateClient(c.Request.Context(), c.GetString(middleware.UserIDKey), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":     registered.Client.ID,
		"client_secret": registered.Secret,
		"name":          registered.Client.Name,
		"domain":        registered.Client.Domain,
		"scopes":        registered.Client.Scopes,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Clients owned by the authenticated user
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} models.OAuthClient
// @Security BearerAuth
// @Router /api/v1/admin/clients [get]
func (cc *clientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Deletes a client owned by the authenticated user and revokes its tokens
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/clients/{id} [delete]
func (cc *clientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
