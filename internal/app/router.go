package app

import (
	"schoolexam_backend/docs"
	"schoolexam_backend/internal/config"
	"schoolexam_backend/internal/middleware"
	"schoolexam_backend/internal/model"

	"schoolexam_backend/pkg/monitoring"

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
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.GET("/exams/:id/results/me", c.result.GetMyResult)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		// 题库
		teacher.POST("/question-banks", c.bank.CreateBank)
		teacher.GET("/question-banks", c.bank.ListBanks)
		teacher.GET("/question-banks/:id", c.bank.GetBank)
		teacher.PUT("/question-banks/:id", c.bank.ReplaceBank)
		teacher.DELETE("/question-banks/:id", c.bank.DeleteBank)
		teacher.POST("/question-banks/:id/source", c.bank.UploadSource)

		// 考试
		teacher.POST("/exams", c.exam.CreateExam)
		teacher.GET("/exams", c.exam.ListExams)
		teacher.GET("/exams/:id", c.exam.GetExam)
		teacher.PUT("/exams/:id", c.exam.UpdateExam)
		teacher.PATCH("/exams/:id/status", c.exam.UpdateStatus)
		teacher.DELETE("/exams/:id", c.exam.DeleteExam)

		// 试卷变体与分配
		teacher.POST("/exams/:id/variants/assign", c.variant.AssignVariants)
		teacher.PUT("/exams/:id/variants/assignments", c.variant.SaveManualAssignments)
		teacher.GET("/exams/:id/variants", c.variant.ListVariants)
		teacher.GET("/variants/:variantId", c.variant.GetVariant)
		teacher.DELETE("/variants/:variantId", c.variant.DeleteVariant)

		// 判分与成绩
		teacher.POST("/exams/:id/results/score", c.result.ScoreSubmission)
		teacher.POST("/exams/:id/results/score/bulk", c.result.ScoreBulk)
		teacher.GET("/exams/:id/results", c.result.ListResults)
		teacher.GET("/exams/:id/results/:studentId", c.result.GetStudentResult)
	}
}
