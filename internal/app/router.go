package app

import (
	"mindconnect_backend/docs"
	"mindconnect_backend/internal/config"
	"mindconnect_backend/internal/middleware"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerCommonRoutes(authGroup, c)
		a.registerPatientRoutes(authGroup, c)
		a.registerPsychologistRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Health)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// Anonymous submissions are allowed before registration; a logged-in
		// patient submitting here gets matches generated right away.
		public.POST("/questionnaire", middleware.TryAuthMiddleware(a.Config), c.questionnaire.Submit)
	}
}

func (a *App) registerCommonRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.POST("/user/avatar/upload", c.user.UploadAvatar)

	rg.GET("/appointments", c.appointment.List)
	rg.PUT("/appointments/:id/cancel", c.appointment.Cancel)

	rg.POST("/messages", c.message.Send)
	rg.GET("/messages/unread/count", c.message.UnreadCount)
	rg.GET("/messages/:userId", c.message.Conversation)
}

func (a *App) registerPatientRoutes(rg *gin.RouterGroup, c *controllers) {
	patient := rg.Group("/")
	patient.Use(middleware.RoleMiddleware(model.Patient))
	{
		patient.GET("/questionnaire/latest", c.questionnaire.Latest)
		patient.GET("/questionnaire/:id", c.questionnaire.Get)
		patient.POST("/questionnaire/claim", c.questionnaire.Claim)

		patient.GET("/matches", c.match.List)
		patient.POST("/matches/generate", c.match.Generate)
		patient.PUT("/matches/:id/status", c.match.UpdateStatus)

		patient.POST("/appointments/consultation", c.appointment.BookConsultation)
		patient.POST("/appointments/feedback", c.appointment.SubmitFeedback)
	}
}

func (a *App) registerPsychologistRoutes(rg *gin.RouterGroup, c *controllers) {
	psy := rg.Group("/")
	psy.Use(middleware.RoleMiddleware(model.Psychologist))
	{
		psy.GET("/matches/received", c.match.ListForPsychologist)

		psy.PUT("/appointments/:id/complete", c.appointment.Complete)

		psy.GET("/availability", c.appointment.ListAvailability)
		psy.POST("/availability", c.appointment.AddAvailability)
		psy.DELETE("/availability/:id", c.appointment.RemoveAvailability)
	}
}
