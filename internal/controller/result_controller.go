package controller

import (
	"errors"
	"strconv"

	"schoolexam_backend/internal/model"
	"schoolexam_backend/internal/service"
	"schoolexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	Service *service.ScoringService
}

func NewResultController(svc *service.ScoringService) *ResultController {
	return &ResultController{Service: svc}
}

type ScoreSubmissionRequest struct {
	StudentID uint               `json:"studentId" binding:"required"`
	Answers   model.AnswerMap    `json:"answers"`
	Source    model.ResultSource `json:"source" binding:"omitempty,oneof=MANUAL SCAN"`
	VariantID *string            `json:"variantId"`
	Notes     string             `json:"notes"`
}

// @Summary Score one student's submission
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param body body ScoreSubmissionRequest true "Submitted answers"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/results/score [post]
func (c *ResultController) ScoreSubmission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	examID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	var req ScoreSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.ScoreSubmission(claims.SchoolID, uint(examID), req.StudentID, req.Answers, req.Source, req.VariantID, req.Notes)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type ScoreBulkRequest struct {
	Submissions []service.BulkSubmission `json:"submissions" binding:"required,min=1,dive"`
}

// @Summary Score a batch of submissions, reporting partial failures
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param body body ScoreBulkRequest true "Batch of submissions"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/results/score/bulk [post]
func (c *ResultController) ScoreBulk(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	examID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	var req ScoreBulkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.Service.ScoreBulk(claims.SchoolID, uint(examID), req.Submissions))
}

// @Summary List an exam's results
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/results [get]
func (c *ResultController) ListResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	examID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	results, err := c.Service.ListResults(claims.SchoolID, uint(examID))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, results)
}

// @Summary Get the calling student's own result
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/results/me [get]
func (c *ResultController) GetMyResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	examID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	result, err := c.Service.GetResult(claims.SchoolID, uint(examID), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrResultNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Get one student's result
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/results/{studentId} [get]
func (c *ResultController) GetStudentResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	examID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	studentID, err := strconv.Atoi(ctx.Param("studentId"))
	if err != nil {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	result, err := c.Service.GetResult(claims.SchoolID, uint(examID), uint(studentID))
	if err != nil {
		if errors.Is(err, util.ErrResultNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
