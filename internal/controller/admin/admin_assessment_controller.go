package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skillcap/assessment-api/internal/apperr"
	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/service"
)

// AdminAssessmentController covers authoring: creating assessments,
// generating questions, publishing, and content stats.
type AdminAssessmentController struct {
	adminSvc      service.AdminAssessmentService
	assessmentSvc service.AssessmentService
}

func NewAdminAssessmentController(adminSvc service.AdminAssessmentService, assessmentSvc service.AssessmentService) *AdminAssessmentController {
	return &AdminAssessmentController{adminSvc: adminSvc, assessmentSvc: assessmentSvc}
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidState:
		return http.StatusConflict
	case apperr.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// CreateAssessment godoc
// @Summary Create a new assessment
// @Description Creates an assessment, optionally with an inline question set, and attaches it to a course inferred from the title
// @Tags admin
// @Accept json
// @Produce json
// @Param assessment body dto.AssessmentCreateDTO true "Assessment data"
// @Success 201 {object} dto.AssessmentResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assessments [post]
func (c *AdminAssessmentController) CreateAssessment(ctx *gin.Context) {
	var req dto.AssessmentCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AssessmentCreateDTO")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	created, err := c.adminSvc.CreateAssessment(req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create assessment")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// GetAssessment godoc
// @Summary Get an assessment with its questions
// @Description Full admin view including correct answers
// @Tags admin
// @Produce json
// @Param id path int true "Assessment ID"
// @Success 200 {object} dto.AssessmentResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id} [get]
func (c *AdminAssessmentController) GetAssessment(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid assessment ID format"})
		return
	}

	assessment, err := c.adminSvc.GetAssessment(uint(id))
	if err != nil {
		log.Error().Err(err).Uint64("assessmentID", id).Msg("Failed to get assessment")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, assessment)
}

// GenerateQuestions godoc
// @Summary Generate questions for an assessment
// @Description Asks the model for additional validated MCQs and attaches them to the assessment
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Assessment ID"
// @Param request body dto.GenerateQuestionsDTO true "Generation parameters"
// @Success 200 {object} dto.AssessmentResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 503 {object} dto.ErrorResponse "Question generation unavailable"
// @Router /assessments/{id}/generate [post]
func (c *AdminAssessmentController) GenerateQuestions(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid assessment ID format"})
		return
	}

	var req dto.GenerateQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind GenerateQuestionsDTO")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	assessment, err := c.adminSvc.GenerateQuestions(uint(id), req)
	if err != nil {
		log.Error().Err(err).Uint64("assessmentID", id).Msg("Failed to generate questions")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, assessment)
}

// PublishAssessment godoc
// @Summary Publish an assessment
// @Description Makes the assessment available to test takers; requires at least one question
// @Tags admin
// @Produce json
// @Param id path int true "Assessment ID"
// @Success 200 {object} dto.AssessmentResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Assessment has no questions"
// @Router /assessments/{id}/publish [post]
func (c *AdminAssessmentController) PublishAssessment(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid assessment ID format"})
		return
	}

	assessment, err := c.adminSvc.Publish(uint(id))
	if err != nil {
		log.Error().Err(err).Uint64("assessmentID", id).Msg("Failed to publish assessment")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, assessment)
}

// GetStats godoc
// @Summary Get content stats
// @Description Totals for assessments and questions, with a per-difficulty breakdown
// @Tags admin
// @Produce json
// @Success 200 {object} dto.AssessmentStatsDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assessments/stats [get]
func (c *AdminAssessmentController) GetStats(ctx *gin.Context) {
	stats, err := c.assessmentSvc.Stats()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get assessment stats")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: "Failed to retrieve stats"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
