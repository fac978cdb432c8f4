package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skillcap/assessment-api/internal/apperr"
	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/service"
)

// DashboardController serves the test-taker surface: catalog, attempt
// lifecycle, results, and progress.
type DashboardController struct {
	assessmentSvc service.AssessmentService
	attemptSvc    service.AttemptService
	resultSvc     service.ResultService
	progressSvc   service.ProgressService
}

func NewDashboardController(
	assessmentSvc service.AssessmentService,
	attemptSvc service.AttemptService,
	resultSvc service.ResultService,
	progressSvc service.ProgressService,
) *DashboardController {
	return &DashboardController{
		assessmentSvc: assessmentSvc,
		attemptSvc:    attemptSvc,
		resultSvc:     resultSvc,
		progressSvc:   progressSvc,
	}
}

// statusFor maps service error kinds to HTTP status codes.
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

// GetAssessments godoc
// @Summary List available assessments
// @Description Returns all non-archived assessments, both flat and grouped into courses by skill domain
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.AssessmentListDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /getAssessments [get]
func (c *DashboardController) GetAssessments(ctx *gin.Context) {
	list, err := c.assessmentSvc.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list assessments")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: "Failed to retrieve assessments"})
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// GetAssessmentsByCourse godoc
// @Summary List assessments for one course
// @Description Returns published assessments whose skill domain matches the course name (case-insensitive), deduplicated by normalized title
// @Tags dashboard
// @Produce json
// @Param course path string true "Course name (skill domain)"
// @Success 200 {object} dto.CourseAssessmentsDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assessments/by_course/{course} [get]
func (c *DashboardController) GetAssessmentsByCourse(ctx *gin.Context) {
	course := ctx.Param("course")
	list, err := c.assessmentSvc.ListByCourse(course)
	if err != nil {
		log.Error().Err(err).Str("course", course).Msg("Failed to list assessments by course")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: "Failed to retrieve assessments"})
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// GetAssessmentQuestions godoc
// @Summary Open an attempt and fetch its questions
// @Description Creates a new in-progress attempt against the assessment and returns its sanitized question set (no correct answers)
// @Tags attempts
// @Produce json
// @Param id path int true "Assessment ID"
// @Param user_id query int false "User ID"
// @Success 200 {object} dto.AttemptStartDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Assessment not published or has no questions"
// @Router /assessments/{id}/questions [get]
func (c *DashboardController) GetAssessmentQuestions(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid assessment ID format"})
		return
	}

	start, err := c.attemptSvc.StartByAssessment(uint(id), optionalUserID(ctx))
	if err != nil {
		log.Error().Err(err).Uint64("assessmentID", id).Msg("Failed to open attempt")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, start)
}

// StartAssessment godoc
// @Summary Start an assessment by skill name
// @Description Resolves the skill to a published assessment (creating one with generated questions when none exists) and opens an attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param request body dto.StartAssessmentRequest true "Skill to assess"
// @Success 200 {object} dto.AttemptStartDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 503 {object} dto.ErrorResponse "Question generation unavailable"
// @Router /startAssessment [post]
func (c *DashboardController) StartAssessment(ctx *gin.Context) {
	var req dto.StartAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind StartAssessmentRequest")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	start, err := c.attemptSvc.StartBySkill(req)
	if err != nil {
		log.Error().Err(err).Str("skill", req.SkillName).Msg("Failed to start assessment")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, start)
}

// SubmitAssessment godoc
// @Summary Submit answers for an attempt
// @Description Scores the attempt server-side and finalizes it. Late submissions are scored but marked timed_out. Re-submitting a finalized attempt returns the frozen result unchanged.
// @Tags attempts
// @Accept json
// @Produce json
// @Param request body dto.SubmitAssessmentRequest true "Attempt ID and answers"
// @Success 200 {object} dto.ResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt was abandoned"
// @Router /submitAssessment [post]
func (c *DashboardController) SubmitAssessment(ctx *gin.Context) {
	var req dto.SubmitAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind SubmitAssessmentRequest")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	result, err := c.attemptSvc.Submit(req)
	if err != nil {
		log.Error().Err(err).Uint("attemptID", req.AttemptID).Msg("Failed to submit attempt")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetAttemptResult godoc
// @Summary Get the result of a finalized attempt
// @Description Returns the frozen result; its score fields are identical to those returned at submission time
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} dto.ResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Attempt or result not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt still in progress"
// @Router /attempts/{id}/result [get]
func (c *DashboardController) GetAttemptResult(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return
	}

	result, err := c.resultSvc.GetByAttemptID(uint(id))
	if err != nil {
		log.Error().Err(err).Uint64("attemptID", id).Msg("Failed to get attempt result")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// CancelAttempt godoc
// @Summary Cancel an in-progress attempt
// @Description Marks the attempt abandoned; no result is produced. Cancelling an already-abandoned attempt is a no-op.
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} model.Attempt
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already finalized"
// @Router /attempts/{id}/cancel [post]
func (c *DashboardController) CancelAttempt(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return
	}

	attempt, err := c.attemptSvc.Cancel(uint(id))
	if err != nil {
		log.Error().Err(err).Uint64("attemptID", id).Msg("Failed to cancel attempt")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// GetProgress godoc
// @Summary Get progress and stats
// @Description Aggregates finished attempts into overall stats, per-skill progress, competency scores, and recent assessments
// @Tags dashboard
// @Produce json
// @Param user_id query int false "User ID"
// @Success 200 {object} dto.ProgressDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /getProgress [get]
func (c *DashboardController) GetProgress(ctx *gin.Context) {
	progress, err := c.progressSvc.GetProgress(optionalUserID(ctx))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get progress")
		ctx.JSON(statusFor(err), dto.ErrorResponse{Message: "Failed to retrieve progress"})
		return
	}
	ctx.JSON(http.StatusOK, progress)
}

func optionalUserID(ctx *gin.Context) *uint {
	raw := ctx.Query("user_id")
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(val)
	return &id
}
