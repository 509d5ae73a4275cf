package controller

import (
	"errors"
	"strconv"

	"schoolexam_backend/internal/service"
	"schoolexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionBankController struct {
	Service *service.QuestionBankService
}

func NewQuestionBankController(svc *service.QuestionBankService) *QuestionBankController {
	return &QuestionBankController{Service: svc}
}

// @Summary Create a question bank from parsed questions
// @Tags question-banks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionBankRequest true "Bank with questions"
// @Success 201 {object} util.Response
// @Router /api/question-banks [post]
func (c *QuestionBankController) CreateBank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionBankRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	bank, err := c.Service.CreateBank(claims.SchoolID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, bank)
}

// @Summary List question banks
// @Tags question-banks
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} util.Response
// @Router /api/question-banks [get]
func (c *QuestionBankController) ListBanks(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	banks, total, err := c.Service.ListBanks(claims.SchoolID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: banks, Total: total, Page: page, Limit: limit})
}

// @Summary Get a question bank with its questions
// @Tags question-banks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bank ID"
// @Success 200 {object} util.Response
// @Router /api/question-banks/{id} [get]
func (c *QuestionBankController) GetBank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	bank, err := c.Service.GetBank(claims.SchoolID, uint(id))
	if err != nil {
		if errors.Is(err, util.ErrBankNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, bank)
}

// @Summary Replace a question bank's questions (destructive)
// @Tags question-banks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bank ID"
// @Param body body service.QuestionBankRequest true "New content"
// @Success 200 {object} util.Response
// @Router /api/question-banks/{id} [put]
func (c *QuestionBankController) ReplaceBank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.QuestionBankRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	bank, err := c.Service.ReplaceBank(claims.SchoolID, uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrBankNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, bank)
}

// @Summary Delete a question bank
// @Tags question-banks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bank ID"
// @Success 200 {object} util.Response
// @Router /api/question-banks/{id} [delete]
func (c *QuestionBankController) DeleteBank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.Service.DeleteBank(claims.SchoolID, uint(id)); err != nil {
		if errors.Is(err, util.ErrBankNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary Upload the bank's source document
// @Tags question-banks
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bank ID"
// @Param file formData file true "Source document"
// @Success 200 {object} util.Response
// @Router /api/question-banks/{id}/source [post]
func (c *QuestionBankController) UploadSource(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.Service.UploadSource(
		ctx.Request.Context(),
		claims.SchoolID,
		uint(id),
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		if errors.Is(err, util.ErrBankNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

func pagination(ctx *gin.Context) (int, int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
