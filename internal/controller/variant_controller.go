package controller

import (
	"errors"
	"strconv"

	"schoolexam_backend/internal/service"
	"schoolexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VariantController struct {
	Service *service.VariantService
}

func NewVariantController(svc *service.VariantService) *VariantController {
	return &VariantController{Service: svc}
}

type AssignVariantsRequest struct {
	VariantCount int    `json:"variantCount" binding:"required,min=1,max=20"`
	StudentIDs   []uint `json:"studentIds" binding:"required,min=1"`
}

// @Summary Generate variants and assign them round-robin across a roster
// @Tags variants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param body body AssignVariantsRequest true "Variant count and roster"
// @Success 201 {object} util.Response
// @Router /api/exams/{id}/variants/assign [post]
func (c *VariantController) AssignVariants(ctx *gin.Context) {
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

	var req AssignVariantsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.AssignVariants(claims.SchoolID, uint(examID), req.VariantCount, req.StudentIDs)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrVariantCount), errors.Is(err, util.ErrEmptyRoster):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, result)
}

type ManualAssignmentsRequest struct {
	Assignments []service.ManualAssignment `json:"assignments" binding:"required,min=1,dive"`
}

// @Summary Link students to existing variants without generating new ones
// @Tags variants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param body body ManualAssignmentsRequest true "Student-variant pairs"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/variants/assignments [put]
func (c *VariantController) SaveManualAssignments(ctx *gin.Context) {
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

	var req ManualAssignmentsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assigned, err := c.Service.SaveManualAssignments(claims.SchoolID, uint(examID), req.Assignments)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound), errors.Is(err, util.ErrVariantNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"assignedCount": assigned})
}

// @Summary List an exam's variants ordered by variant number
// @Tags variants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/variants [get]
func (c *VariantController) ListVariants(ctx *gin.Context) {
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

	variants, err := c.Service.ListVariants(claims.SchoolID, uint(examID))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, variants)
}

// @Summary Get one variant's questionData for booklet rendering
// @Tags variants
// @Produce json
// @Security BearerAuth
// @Param variantId path string true "Variant ID"
// @Success 200 {object} util.Response
// @Router /api/variants/{variantId} [get]
func (c *VariantController) GetVariant(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	variant, err := c.Service.GetVariant(ctx.Request.Context(), claims.SchoolID, ctx.Param("variantId"))
	if err != nil {
		if errors.Is(err, util.ErrVariantNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, variant)
}

// @Summary Delete a variant (results keep a dangling reference)
// @Tags variants
// @Produce json
// @Security BearerAuth
// @Param variantId path string true "Variant ID"
// @Success 200 {object} util.Response
// @Router /api/variants/{variantId} [delete]
func (c *VariantController) DeleteVariant(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.DeleteVariant(ctx.Request.Context(), claims.SchoolID, ctx.Param("variantId")); err != nil {
		if errors.Is(err, util.ErrVariantNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
