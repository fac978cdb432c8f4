package service

import (
	"context"
	"errors"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/skillcap/assessment-api/internal/apperr"
	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/model"
	"github.com/skillcap/assessment-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAssessmentService covers the authoring side: creating assessments,
// generating question sets, and publishing.
type AdminAssessmentService interface {
	CreateAssessment(req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error)
	GetAssessment(id uint) (*dto.AssessmentResponseDTO, error)
	GenerateQuestions(assessmentID uint, req dto.GenerateQuestionsDTO) (*dto.AssessmentResponseDTO, error)
	Publish(assessmentID uint) (*dto.AssessmentResponseDTO, error)
}

type adminAssessmentService struct {
	assessmentRepo repository.AssessmentRepository
	questionRepo   repository.QuestionRepository
	courseRepo     repository.CourseRepository
	llm            GeminiLLMService
}

func NewAdminAssessmentService(
	assessmentRepo repository.AssessmentRepository,
	questionRepo repository.QuestionRepository,
	courseRepo repository.CourseRepository,
	llm GeminiLLMService,
) AdminAssessmentService {
	return &adminAssessmentService{
		assessmentRepo: assessmentRepo,
		questionRepo:   questionRepo,
		courseRepo:     courseRepo,
		llm:            llm,
	}
}

func (s *adminAssessmentService) CreateAssessment(req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error) {
	assessment := &model.Assessment{
		Title:           req.Title,
		Description:     req.Description,
		SkillDomain:     NormalizeDomain(req.SkillDomain),
		Difficulty:      req.Difficulty,
		QuestionCount:   req.QuestionCount,
		DurationMinutes: req.DurationMinutes,
		PassingScore:    req.PassingScore,
		QuestionWeight:  req.QuestionWeight,
		Status:          model.AssessmentStatusDraft,
	}
	if req.Publish {
		assessment.Status = model.AssessmentStatusPublished
	}

	for _, q := range req.Questions {
		assessment.Questions = append(assessment.Questions, model.Question{
			Prompt:        q.Prompt,
			Options:       datatypes.NewJSONSlice(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Difficulty:    q.Difficulty,
			Topic:         q.Topic,
		})
	}
	if len(assessment.Questions) > 0 {
		assessment.QuestionCount = len(assessment.Questions)
	}

	courseName := DetectCourseName(assessment.Title + " " + assessment.SkillDomain)
	if course, err := s.courseRepo.FindOrCreate(courseName, ""); err == nil {
		assessment.CourseID = &course.ID
	} else {
		log.Warn().Err(err).Str("course", courseName).Msg("Course attach failed; creating assessment without course")
	}

	if err := s.assessmentRepo.Create(assessment); err != nil {
		return nil, err
	}
	log.Info().Uint("assessmentID", assessment.ID).Str("skillDomain", assessment.SkillDomain).Str("status", assessment.Status).Msg("Assessment created")
	return s.toResponseDTO(assessment)
}

func (s *adminAssessmentService) GetAssessment(id uint) (*dto.AssessmentResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assessment %d not found", id)
		}
		return nil, err
	}
	return s.toResponseDTO(assessment)
}

// GenerateQuestions asks the model for additional questions and attaches them
// to the assessment. The assessment's stored question count follows the real
// set size afterwards.
func (s *adminAssessmentService) GenerateQuestions(assessmentID uint, req dto.GenerateQuestionsDTO) (*dto.AssessmentResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDWithQuestions(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assessment %d not found", assessmentID)
		}
		return nil, err
	}
	if assessment.Status == model.AssessmentStatusArchived {
		return nil, apperr.InvalidState("assessment %d is archived", assessmentID)
	}

	count := req.Count
	if count <= 0 {
		count = assessment.QuestionCount - len(assessment.Questions)
	}
	if count <= 0 {
		count = defaultQuestionsPerAttempt
	}

	questions, err := s.llm.GenerateQuestions(context.Background(), assessment.SkillDomain, req.SourceTitle, count)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].AssessmentID = &assessment.ID
	}
	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}

	assessment.Questions = append(assessment.Questions, questions...)
	assessment.QuestionCount = len(assessment.Questions)
	if err := s.assessmentRepo.Update(assessment); err != nil {
		return nil, err
	}
	log.Info().Uint("assessmentID", assessment.ID).Int("generated", len(questions)).Msg("Questions generated")
	return s.toResponseDTO(assessment)
}

func (s *adminAssessmentService) Publish(assessmentID uint) (*dto.AssessmentResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDWithQuestions(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assessment %d not found", assessmentID)
		}
		return nil, err
	}
	if len(assessment.Questions) == 0 {
		return nil, apperr.InvalidState("assessment %d cannot be published without questions", assessmentID)
	}
	assessment.Status = model.AssessmentStatusPublished
	if err := s.assessmentRepo.Update(assessment); err != nil {
		return nil, err
	}
	return s.toResponseDTO(assessment)
}

func (s *adminAssessmentService) toResponseDTO(assessment *model.Assessment) (*dto.AssessmentResponseDTO, error) {
	var out dto.AssessmentResponseDTO
	if err := copier.Copy(&out, assessment); err != nil {
		return nil, err
	}
	return &out, nil
}
