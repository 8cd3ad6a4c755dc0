package controller

import (
	"errors"
	"lingo_backend/internal/middleware"
	"lingo_backend/internal/service"
	"lingo_backend/internal/util"
	"lingo_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// AlreadyPassedBody 403 响应
type AlreadyPassedBody struct {
	Error     string `json:"error"`
	BestScore int    `json:"bestScore"`
	Passed    bool   `json:"passed"`
}

// @Summary 获取测验掌握状态
// @Tags 测验模块
// @Produce json
// @Param learnerId path int true "学习者ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} model.MasteryStatus
// @Router /api/learners/{learnerId}/lessons/{lessonId}/quiz [get]
func (c *QuizController) GetStatus(ctx *gin.Context) {
	learnerID := middleware.GetLearnerFromContext(ctx)
	lessonID, ok := util.ParseID(ctx.Param("lessonId"))
	if !ok {
		util.FlatError(ctx, http.StatusBadRequest, "Invalid lesson ID", ctx.Param("lessonId"))
		return
	}

	status, err := c.QuizService.Status(ctx.Request.Context(), learnerID, lessonID)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.FlatError(ctx, http.StatusNotFound, "Lesson not found", "")
			return
		}
		logger.Log.Error("get quiz status failed", zap.Error(err))
		util.FlatError(ctx, http.StatusInternalServerError, "Something went wrong, please try again", "")
		return
	}

	util.Flat(ctx, http.StatusOK, status)
}

// @Summary 提交测验答案
// @Tags 测验模块
// @Accept json
// @Produce json
// @Param learnerId path int true "学习者ID"
// @Param lessonId path int true "课时ID"
// @Param body body service.QuizSubmission true "答案列表"
// @Success 200 {object} service.QuizSubmissionResult
// @Failure 400 {object} util.ErrorBody
// @Failure 403 {object} AlreadyPassedBody
// @Router /api/learners/{learnerId}/lessons/{lessonId}/quiz [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	learnerID := middleware.GetLearnerFromContext(ctx)
	lessonID, ok := util.ParseID(ctx.Param("lessonId"))
	if !ok {
		util.FlatError(ctx, http.StatusBadRequest, "Invalid lesson ID", ctx.Param("lessonId"))
		return
	}

	var req service.QuizSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.FlatError(ctx, http.StatusBadRequest, "Invalid submission", err.Error())
		return
	}

	result, err := c.QuizService.Submit(ctx.Request.Context(), learnerID, lessonID, req)
	if err != nil {
		c.submitError(ctx, err)
		return
	}

	util.Flat(ctx, http.StatusOK, result)
}

func (c *QuizController) submitError(ctx *gin.Context, err error) {
	var passedErr *service.AlreadyPassedError
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &passedErr):
		util.Flat(ctx, http.StatusForbidden, AlreadyPassedBody{
			Error:     "Quiz already passed",
			BestScore: passedErr.BestScore,
			Passed:    true,
		})
	case errors.As(err, &validationErr):
		util.FlatError(ctx, http.StatusBadRequest, "Invalid submission", validationErr.Detail)
	case errors.Is(err, util.ErrLessonNotFound):
		util.FlatError(ctx, http.StatusNotFound, "Lesson not found", "")
	default:
		logger.Log.Error("quiz submission failed",
			zap.Uint("learnerId", middleware.GetLearnerFromContext(ctx)),
			zap.String("lessonId", ctx.Param("lessonId")),
			zap.Error(err),
		)
		util.FlatError(ctx, http.StatusInternalServerError, "Something went wrong, please try again", "")
	}
}
