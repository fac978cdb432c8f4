package service

import (
	"strings"

	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/repository"
)

// marketDemand is a static per-skill demand score surfaced in listings.
// Real analytics would replace this table.
var marketDemand = map[string]int{
	"React":           95,
	"JavaScript":      90,
	"TypeScript":      85,
	"Problem Solving": 88,
	"Communication":   85,
	"Teamwork":        80,
	"Python":          90,
}

const defaultMarketDemand = 75

// AssessmentService serves the catalog side: listing, course grouping, and
// content stats. Attempt lifecycle lives in AttemptService.
type AssessmentService interface {
	List() (*dto.AssessmentListDTO, error)
	ListByCourse(courseName string) (*dto.CourseAssessmentsDTO, error)
	Stats() (*dto.AssessmentStatsDTO, error)
}

type assessmentService struct {
	assessmentRepo repository.AssessmentRepository
	questionRepo   repository.QuestionRepository
}

func NewAssessmentService(assessmentRepo repository.AssessmentRepository, questionRepo repository.QuestionRepository) AssessmentService {
	return &assessmentService{assessmentRepo: assessmentRepo, questionRepo: questionRepo}
}

// List returns every listable assessment twice over: as a flat list and
// grouped into courses by normalized skill domain. A course's test_count is
// the number of distinct normalized titles it holds, and its progress bar is
// a 5-points-per-source heuristic capped at 100.
func (s *assessmentService) List() (*dto.AssessmentListDTO, error) {
	assessments, err := s.assessmentRepo.FindAllListable()
	if err != nil {
		return nil, err
	}

	flat := make([]dto.AssessmentSummaryDTO, 0, len(assessments))
	grouped := make(map[string][]dto.AssessmentSummaryDTO)
	order := make([]string, 0)

	for _, a := range assessments {
		skill := NormalizeDomain(a.SkillDomain)
		demand, ok := marketDemand[skill]
		if !ok {
			demand = defaultMarketDemand
		}
		summary := dto.AssessmentSummaryDTO{
			ID:              a.ID,
			Title:           a.Title,
			SkillName:       skill,
			SkillDomain:     skill,
			Description:     a.Description,
			QuestionCount:   a.QuestionCount,
			DurationMinutes: a.DurationMinutes,
			Difficulty:      a.Difficulty,
			MarketDemand:    demand,
		}
		flat = append(flat, summary)
		if _, seen := grouped[skill]; !seen {
			order = append(order, skill)
		}
		grouped[skill] = append(grouped[skill], summary)
	}

	courses := make([]dto.CourseSummaryDTO, 0, len(order))
	for _, skill := range order {
		members := grouped[skill]
		uniqueTitles := make(map[string]bool)
		for _, m := range members {
			uniqueTitles[strings.ToLower(NormalizeTitle(m.Title))] = true
		}
		count := len(uniqueTitles)
		if count == 0 {
			count = 1
		}
		progress := count * 5
		if progress > 100 {
			progress = 100
		}
		courses = append(courses, dto.CourseSummaryDTO{
			SkillDomain: skill,
			SkillName:   skill,
			TestCount:   count,
			Progress:    progress,
			Assessments: members,
		})
	}

	return &dto.AssessmentListDTO{Assessments: flat, Courses: courses}, nil
}

// ListByCourse returns the published assessments under one skill domain,
// matched case-insensitively and deduplicated by normalized title.
func (s *assessmentService) ListByCourse(courseName string) (*dto.CourseAssessmentsDTO, error) {
	assessments, err := s.assessmentRepo.FindPublishedBySkillDomain(courseName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]dto.AssessmentSummaryDTO, 0, len(assessments))
	for _, a := range assessments {
		normalizedTitle := NormalizeTitle(a.Title)
		key := strings.ToLower(normalizedTitle)
		if seen[key] {
			continue
		}
		seen[key] = true
		skill := NormalizeDomain(a.SkillDomain)
		out = append(out, dto.AssessmentSummaryDTO{
			ID:              a.ID,
			Title:           normalizedTitle,
			OriginalTitle:   a.Title,
			SkillName:       skill,
			SkillDomain:     skill,
			Description:     a.Description,
			QuestionCount:   a.QuestionCount,
			DurationMinutes: a.DurationMinutes,
			Difficulty:      a.Difficulty,
		})
	}

	return &dto.CourseAssessmentsDTO{
		CourseName:  NormalizeDomain(courseName),
		Assessments: out,
		Total:       len(out),
	}, nil
}

func (s *assessmentService) Stats() (*dto.AssessmentStatsDTO, error) {
	totalAssessments, err := s.assessmentRepo.CountAll()
	if err != nil {
		return nil, err
	}
	totalQuestions, err := s.questionRepo.CountAll()
	if err != nil {
		return nil, err
	}
	byDifficulty, err := s.questionRepo.CountByDifficulty()
	if err != nil {
		return nil, err
	}
	return &dto.AssessmentStatsDTO{
		TotalAssessments:      int(totalAssessments),
		TotalQuestions:        int(totalQuestions),
		QuestionsByDifficulty: byDifficulty,
	}, nil
}
