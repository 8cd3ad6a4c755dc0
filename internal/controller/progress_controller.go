package controller

import (
	"errors"
	"lingo_backend/internal/middleware"
	"lingo_backend/internal/service"
	"lingo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type TimeSpentRequest struct {
	Seconds int `json:"seconds" binding:"min=0"`
}

// @Summary 开始学习课时
// @Tags 学习进度
// @Produce json
// @Param learnerId path int true "学习者ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/learners/{learnerId}/lessons/{lessonId}/start [post]
func (c *ProgressController) StartLesson(ctx *gin.Context) {
	lessonID, ok := util.ParseID(ctx.Param("lessonId"))
	if !ok {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	progress, err := c.ProgressService.MarkLessonStarted(ctx.Request.Context(), middleware.GetLearnerFromContext(ctx), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary 完成没有测验的课时
// @Tags 学习进度
// @Produce json
// @Param learnerId path int true "学习者ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/learners/{learnerId}/lessons/{lessonId}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	lessonID, ok := util.ParseID(ctx.Param("lessonId"))
	if !ok {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	decision, err := c.ProgressService.CompleteLessonWithoutQuiz(ctx.Request.Context(), middleware.GetLearnerFromContext(ctx), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"lessonCompleted": true, "certificate": decision})
}

// @Summary 记录学习时长
// @Tags 学习进度
// @Accept json
// @Produce json
// @Param learnerId path int true "学习者ID"
// @Param lessonId path int true "课时ID"
// @Param body body TimeSpentRequest true "学习秒数"
// @Success 200 {object} util.Response
// @Router /api/learners/{learnerId}/lessons/{lessonId}/time [post]
func (c *ProgressController) RecordTime(ctx *gin.Context) {
	lessonID, ok := util.ParseID(ctx.Param("lessonId"))
	if !ok {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	var req TimeSpentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	entry, err := c.ProgressService.AddTimeSpent(ctx.Request.Context(), middleware.GetLearnerFromContext(ctx), lessonID, req.Seconds)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, entry)
}

// @Summary 获取课时进度
// @Tags 学习进度
// @Produce json
// @Param learnerId path int true "学习者ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/learners/{learnerId}/lessons/{lessonId}/progress [get]
func (c *ProgressController) GetLessonProgress(ctx *gin.Context) {
	lessonID, ok := util.ParseID(ctx.Param("lessonId"))
	if !ok {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	entry, err := c.ProgressService.LessonProgress(ctx.Request.Context(), middleware.GetLearnerFromContext(ctx), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, entry)
}

// @Summary 获取课程进度
// @Tags 学习进度
// @Produce json
// @Param learnerId path int true "学习者ID"
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/learners/{learnerId}/courses/{courseId}/progress [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	courseID, ok := util.ParseID(ctx.Param("courseId"))
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	progress, err := c.ProgressService.CourseProgress(ctx.Request.Context(), middleware.GetLearnerFromContext(ctx), courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary 获取学习者证书
// @Tags 学习进度
// @Produce json
// @Param learnerId path int true "学习者ID"
// @Success 200 {object} util.Response
// @Router /api/learners/{learnerId}/certificates [get]
func (c *ProgressController) ListCertificates(ctx *gin.Context) {
	certs, err := c.ProgressService.ListCertificates(ctx.Request.Context(), middleware.GetLearnerFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": certs, "total": len(certs)})
}

// respondError 统一的错误映射（带包裹的接口）
func respondError(ctx *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		util.BadRequest(ctx, validationErr.Detail)
	case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrCourseNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrLessonHasQuiz):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
