package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/docs"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/config"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/controllers"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/realtime"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies are the shared resources the HTTP layer is built on
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  cache.Cache
	Hub    realtime.Hub
	Log    *logrus.Logger
}

// NewRouter builds every service and controller and registers the routes
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	controllers.SetExposeInternalErrors(!cfg.IsProduction())
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	var bootstrap map[string]services.BootstrapAccount
	if cfg.AuthBootstrap {
		bootstrap = services.DefaultBootstrapAccounts()
	}

	authService := services.NewAuthService(deps.DB, tokens, bootstrap, deps.Log)
	orderService := services.NewOrderService(deps.DB, deps.Hub, deps.Log)
	chatService := services.NewChatService(deps.DB, deps.Hub, deps.Log)
	settingsService := services.NewSettingsService(deps.DB)

	h := handlers{
		auth:        controllers.NewAuthController(authService, settingsService, cfg.CookieName, cfg.IsProduction()),
		orders:      controllers.NewOrderController(orderService),
		chats:       controllers.NewChatController(chatService, orderService),
		catalog:     controllers.NewCatalogController(services.NewCatalogService(deps.DB, deps.Cache, cfg.CacheTTL, deps.Log)),
		restaurants: controllers.NewRestaurantController(services.NewRestaurantService(deps.DB, deps.Cache, deps.Log)),
		backOffice: controllers.NewBackOfficeController(
			services.NewDashboardService(deps.DB, deps.Cache, cfg.CacheTTL, deps.Log),
			services.NewEmployeeService(deps.DB),
			settingsService,
			services.NewUploadService(cfg.UploadDir, cfg.MaxUploadBytes, deps.Log),
		),
		clients: controllers.NewClientController(services.NewClientService(deps.DB)),
		users:   controllers.NewUserController(services.NewUserService(deps.DB)),
		oauth:   auth.NewOAuthService(deps.DB, tokens),
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Log))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	setupRoutes(router, h, authService, cfg)
	return router
}

type handlers struct {
	auth        controllers.AuthController
	orders      controllers.OrderController
	chats       controllers.ChatController
	catalog     controllers.CatalogController
	restaurants controllers.RestaurantController
	backOffice  controllers.BackOfficeController
	clients     controllers.ClientController
	users       controllers.UserController
	oauth       *auth.OAuthService
}

func setupRoutes(router *gin.Engine, h handlers, authenticator middleware.Authenticator, cfg *config.Config) {
	router.GET("/health", healthCheckHandler)
	router.Static("/uploads", cfg.UploadDir)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler)
		v1.POST("/oauth/token", h.oauth.HandleToken)

		authApi := v1.Group("/auth")
		{
			authApi.POST("/login", h.auth.Login)
			authApi.POST("/logout", h.auth.Logout)
			authApi.GET("/verify", middleware.AuthRequired(authenticator, cfg.CookieName), h.auth.Verify)
		}

		publicApi := v1.Group("/public")
		{
			publicApi.GET("/restaurants", h.restaurants.ListRestaurants)
			publicApi.GET("/restaurants/:id", h.restaurants.GetRestaurant)
			publicApi.GET("/restaurants/:id/foods", h.catalog.RestaurantMenu)
			publicApi.GET("/foods", h.catalog.ListFoods)
			publicApi.GET("/foods/:id", h.catalog.GetFood)
			publicApi.GET("/categories", h.catalog.ListCategories)
			publicApi.GET("/settings", h.backOffice.GetSettings)

			publicApi.POST("/orders", h.orders.CreateOrder)
			publicApi.GET("/orders/:id", h.orders.GetOrder)
			publicApi.GET("/orders/:id/events", h.chats.StreamOrderEvents)

			publicApi.GET("/chats/:orderId", h.chats.GetMessages)
			publicApi.POST("/chats/:orderId", h.chats.PostCustomerMessage)
		}

		adminApi := v1.Group("/admin")
		adminApi.Use(
			middleware.AuthRequired(authenticator, cfg.CookieName),
			middleware.RequireRole(models.RoleSuperAdmin, models.RoleRestaurantAdmin),
		)
		{
			adminApi.GET("/dashboard", h.backOffice.Dashboard)

			adminApi.GET("/orders", h.orders.ListOrders)
			adminApi.GET("/orders/:id", h.orders.GetAdminOrder)
			adminApi.PATCH("/orders/:id/status", h.orders.UpdateOrderStatus)
			adminApi.GET("/deliveries", h.orders.ListDeliveries)

			adminApi.GET("/chats", h.chats.ListChats)
			adminApi.GET("/chats/:orderId", h.chats.GetAdminMessages)
			adminApi.POST("/chats/:orderId", h.chats.PostAdminMessage)

			adminApi.POST("/foods", h.catalog.CreateFood)
			adminApi.PUT("/foods/:id", h.catalog.UpdateFood)
			adminApi.DELETE("/foods/:id", h.catalog.DeleteFood)
			adminApi.POST("/categories", h.catalog.CreateCategory)
			adminApi.PUT("/categories/:id", h.catalog.UpdateCategory)
			adminApi.DELETE("/categories/:id", h.catalog.DeleteCategory)

			adminApi.GET("/employees", h.backOffice.ListEmployees)
			adminApi.POST("/employees", h.backOffice.CreateEmployee)
			adminApi.PUT("/employees/:id", h.backOffice.UpdateEmployee)
			adminApi.DELETE("/employees/:id", h.backOffice.DeleteEmployee)

			adminApi.PUT("/settings", h.backOffice.SaveSettings)
			adminApi.POST("/uploads", h.backOffice.Upload)

			adminApi.GET("/clients", h.clients.ListClients)
			adminApi.POST("/clients", h.clients.CreateClient)
			adminApi.DELETE("/clients/:id", h.clients.DeleteClient)

			superApi := adminApi.Group("")
			superApi.Use(middleware.RequireRole(models.RoleSuperAdmin))
			{
				superApi.POST("/restaurants", h.restaurants.CreateRestaurant)
				superApi.PUT("/restaurants/:id", h.restaurants.UpdateRestaurant)
				superApi.DELETE("/restaurants/:id", h.restaurants.DeleteRestaurant)
				superApi.GET("/users", h.users.ListUsers)
				superApi.POST("/users", h.users.CreateUser)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-food-ordering-api",
	})
}
