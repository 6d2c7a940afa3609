package app

import (
	"hr_training_backend/docs"
	"hr_training_backend/internal/config"
	"hr_training_backend/internal/middleware"
	"hr_training_backend/internal/model"
	"hr_training_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerCommonRoutes(authGroup, c)
		a.registerHRRoutes(authGroup, c)
	}
}

// registerCommonRoutes HR和员工共用的接口
func (a *App) registerCommonRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.user.UpdateProfile)

	// 模块浏览
	rg.GET("/modules", c.module.ListModules)
	rg.GET("/modules/:id", c.module.GetModule)
	rg.GET("/modules/:id/materials", c.material.List)

	// 学习
	rg.POST("/modules/:id/enroll", c.enrollment.Enroll)
	rg.POST("/modules/:id/lessons/:lessonId/complete", c.enrollment.CompleteLesson)
	rg.GET("/enrollments", c.enrollment.MyEnrollments)
	rg.GET("/dashboard", c.dashboard.EmployeeOverview)

	// 问答
	rg.POST("/qa/ask", c.qa.Ask)
	rg.GET("/qa/sessions", c.qa.Sessions)
	rg.GET("/qa/sessions/:sessionId", c.qa.History)
	rg.DELETE("/qa/sessions/:sessionId", c.qa.DeleteSession)

	// 评估
	rg.POST("/assessments/submit", c.assessment.Submit)
	rg.GET("/modules/:id/submissions", c.assessment.ListSubmissions)
}

// registerHRRoutes HR专属接口
func (a *App) registerHRRoutes(rg *gin.RouterGroup, c *controllers) {
	hr := rg.Group("/hr")
	hr.Use(middleware.RoleMiddleware(model.HR))
	{
		hr.GET("/dashboard", c.dashboard.HROverview)

		hr.POST("/modules", c.module.CreateModule)
		hr.PUT("/modules/:id", c.module.UpdateModule)
		hr.DELETE("/modules/:id", c.module.DeleteModule)
		hr.PATCH("/modules/:id/publish", c.module.PublishModule)
		hr.POST("/modules/:id/lessons", c.module.AddLesson)
		hr.POST("/modules/:id/questions", c.module.AddQuestion)
		hr.DELETE("/questions/:questionId", c.module.DeleteQuestion)
		hr.POST("/modules/:id/quiz/generate", c.assessment.GenerateQuiz)

		hr.POST("/modules/:id/materials", c.material.Upload)
		hr.DELETE("/materials/:materialId", c.material.Delete)

		hr.GET("/employees", c.user.ListEmployees)
		hr.PATCH("/employees/:id/disable", c.user.SetDisabled)
	}
}
