package controller

import (
	"lingo_backend/internal/service"
	"lingo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	courses, err := c.CatalogService.ListCourses(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": courses, "total": len(courses)})
}

// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId} [get]
func (c *CatalogController) GetCourse(ctx *gin.Context) {
	courseID, ok := util.ParseID(ctx.Param("courseId"))
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	course, err := c.CatalogService.GetCourse(ctx.Request.Context(), courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary 课时详情（含题目，不含答案）
// @Tags 课程
// @Produce json
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId} [get]
func (c *CatalogController) GetLesson(ctx *gin.Context) {
	lessonID, ok := util.ParseID(ctx.Param("lessonId"))
	if !ok {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	lesson, err := c.CatalogService.GetLesson(ctx.Request.Context(), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, lesson)
}
