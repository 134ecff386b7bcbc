package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

// BackOfficeController groups the dashboard, staff, store settings and uploads
type BackOfficeController interface {
	Dashboard(c *gin.Context)
	ListEmployees(c *gin.Context)
	CreateEmployee(c *gin.Context)
	UpdateEmployee(c *gin.Context)
	DeleteEmployee(c *gin.Context)
	GetSettings(c *gin.Context)
	SaveSettings(c *gin.Context)
	Upload(c *gin.Context)
}

type backOfficeController struct {
	dashboard services.DashboardService
	employees services.EmployeeService
	settings  services.SettingsService
	uploads   services.UploadService
}

func NewBackOfficeController(
	dashboard services.DashboardService,
	employees services.EmployeeService,
	settings services.SettingsService,
	uploads services.UploadService,
) BackOfficeController {
	return &backOfficeController{
		dashboard: dashboard,
		employees: employees,
		settings:  settings,
		uploads:   uploads,
	}
}

// Dashboard godoc
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Success 200 {object} services.DashboardStats
// @Security BearerAuth
// @Router /api/v1/admin/dashboard [get]
func (bc *backOfficeController) Dashboard(c *gin.Context) {
	stats, err := bc.dashboard.Stats(c.Request.Context(), middleware.CurrentScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListEmployees godoc
// @Summary List employees
// @Tags admin-employees
// @Produce json
// @Success 200 {array} models.Employee
// @Security BearerAuth
// @Router /api/v1/admin/employees [get]
func (bc *backOfficeController) ListEmployees(c *gin.Context) {
	employees, err := bc.employees.ListEmployees(c.Request.Context(), middleware.CurrentScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// CreateEmployee godoc
// @Summary Create an employee
// @Tags admin-employees
// @Accept json
// @Produce json
// @Param employee body services.EmployeeInput true "Employee"
// @Success 201 {object} models.Employee
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/employees [post]
func (bc *backOfficeController) CreateEmployee(c *gin.Context) {
	var in services.EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	employee, err := bc.employees.CreateEmployee(c.Request.Context(), middleware.CurrentScope(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee godoc
// @Summary Update an employee
// @Tags admin-employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param employee body services.EmployeeInput true "Employee"
// @Success 200 {object} models.Employee
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/employees/{id} [put]
func (bc *backOfficeController) UpdateEmployee(c *gin.Context) {
	var in services.EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	employee, err := bc.employees.UpdateEmployee(c.Request.Context(), middleware.CurrentScope(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee godoc
// @Summary Delete an employee
// @Tags admin-employees
// @Param id path string true "Employee ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/employees/{id} [delete]
func (bc *backOfficeController) DeleteEmployee(c *gin.Context) {
	if err := bc.employees.DeleteEmployee(c.Request.Context(), middleware.CurrentScope(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSettings godoc
// @Summary Store settings
// @Description null when the settings were never saved
// @Tags settings
// @Produce json
// @Success 200 {object} models.Settings
// @Router /api/v1/public/settings [get]
func (bc *backOfficeController) GetSettings(c *gin.Context) {
	settings, err := bc.settings.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SaveSettings godoc
// @Summary Save store settings
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body services.SettingsInput true "Settings"
// @Success 200 {object} models.Settings
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/settings [put]
func (bc *backOfficeController) SaveSettings(c *gin.Context) {
	var in services.SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	settings, err := bc.settings.SaveSettings(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Upload godoc
// @Summary Upload an image
// @Description Stores the multipart field "file" and returns its public URL
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/uploads [post]
func (bc *backOfficeController) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrMissingFields, "no file uploaded"))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	url, err := bc.uploads.Save(c.Request.Context(), header.Filename, header.Size, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
