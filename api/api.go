package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/typesense/typesense-go/typesense/api"

	hairmanager "github.com/timknowlden/HairManager-sub001"
	"github.com/timknowlden/HairManager-sub001/api/middleware"
	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/internal/backups"
)

type Api struct {
	service *hairmanager.HairManager
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/auth/register", a.Register)
	router.POST("/auth/login", a.Login)

	// The provider posts delivery events here. It cannot authenticate as a
	// tenant, so the route stays public and matching stays tenant-agnostic.
	router.POST("/webhooks/sendgrid", a.IngestDeliveryEvents)

	protected := router.Group("/", middleware.JWTAuthMiddleware())

	protected.GET("/profile", a.GetProfile)
	protected.PUT("/profile", a.UpdateProfile)

	protected.POST("/clients", a.CreateClient)
	protected.GET("/clients", a.GetAllClients)
	protected.GET("/clients/:id", a.GetClient)
	protected.PUT("/clients/:id", a.UpdateClient)
	protected.DELETE("/clients/:id", a.DeleteClient)

	protected.POST("/services", a.CreateService)
	protected.GET("/services", a.GetAllServices)
	protected.GET("/services/:id", a.GetService)
	protected.PUT("/services/:id", a.UpdateService)
	protected.DELETE("/services/:id", a.DeleteService)

	protected.POST("/locations", a.CreateLocation)
	protected.GET("/locations", a.GetAllLocations)
	protected.GET("/locations/:id", a.GetLocation)
	protected.PUT("/locations/:id", a.UpdateLocation)
	protected.DELETE("/locations/:id", a.DeleteLocation)

	protected.POST("/appointments", a.CreateAppointment)
	protected.GET("/appointments", a.GetAppointments)
	protected.GET("/appointments/:id", a.GetAppointment)
	protected.PUT("/appointments/:id", a.UpdateAppointment)
	protected.DELETE("/appointments/:id", a.DeleteAppointment)

	protected.POST("/invoices/send", a.SendInvoiceEmail)

	protected.GET("/email-logs", a.GetAllEmailLogs)
	protected.GET("/email-logs/:id", a.GetEmailLog)
	protected.PUT("/email-logs/:id/status", a.OverrideEmailLogStatus)
	protected.POST("/email-logs/refresh", a.RefreshDeliveryStatus)

	protected.POST("/distance", a.GetDistance)
	protected.POST("/search/:collection", a.Search)

	protected.GET("/backup", a.BackupAttachments)
	protected.GET("/backup-s3", a.BackupAttachmentsS3)

	return a.router
}

func NewAPI(service *hairmanager.HairManager) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{service: service, router: r}
}

func (a Api) Search(c *gin.Context) {
	collection, passed := c.Params.Get("collection")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection is required. pass id in the route /:collection"})
		return
	}

	var query api.SearchCollectionParams
	err := c.BindJSON(&query)
	if err != nil {
		return
	}

	resp, err := a.service.Search(collection, &query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) BackupAttachments(c *gin.Context) {
	if _, err := backups.BackupAttachments(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backup completed"})
}

func (a Api) BackupAttachmentsS3(c *gin.Context) {
	if err := backups.BackupAttachmentsToS3(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backup uploaded to S3"})
}
