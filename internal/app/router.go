package app

import (
	"lingo_backend/internal/middleware"
	"lingo_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由
	a.registerPublicRoutes(router, c)

	// 2. 学习者路由，学习者 ID 取自路径
	learner := router.Group("/api/learners/:learnerId")
	learner.Use(middleware.LearnerMiddleware())
	{
		a.registerLearnerRoutes(learner, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		public.GET("/courses", c.catalog.ListCourses)
		public.GET("/courses/:courseId", c.catalog.GetCourse)
		public.GET("/lessons/:lessonId", c.catalog.GetLesson)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	lessons := rg.Group("/lessons/:lessonId")
	{
		// 测验
		lessons.GET("/quiz", c.quiz.GetStatus)
		lessons.POST("/quiz", c.quiz.Submit)

		// 课时进度
		lessons.POST("/start", c.progress.StartLesson)
		lessons.POST("/complete", c.progress.CompleteLesson)
		lessons.POST("/time", c.progress.RecordTime)
		lessons.GET("/progress", c.progress.GetLessonProgress)
	}

	rg.GET("/courses/:courseId/progress", c.progress.GetCourseProgress)
	rg.GET("/certificates", c.progress.ListCertificates)
}
