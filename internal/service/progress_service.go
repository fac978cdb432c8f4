package service

import (
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/repository"
)

const (
	progressAttemptWindow = 50
	recentAssessmentLimit = 10
	// targetLevelMargin is added to a user's skill average to produce the
	// displayed target benchmark, capped at 100.
	targetLevelMargin = 12
)

// skillNameMapping folds raw skill domains into the standard names the
// progress charts display. Ordered so the more specific
// "communication & collaboration" wins over plain "communication".
var skillNameMapping = []struct {
	indicator string
	standard  string
}{
	{"react", "React"},
	{"javascript", "JavaScript"},
	{"typescript", "TypeScript"},
	{"python", "Python"},
	{"java", "Java"},
	{"problem solving", "Problem Solving"},
	{"communication & collaboration", "Teamwork"},
	{"communication", "Communication"},
	{"teamwork", "Teamwork"},
}

// competencyCategories maps radar chart categories to the skills that feed
// them. Learning Ability has no skills of its own; it averages everything.
var competencyCategories = map[string][]string{
	"Technical Skills": {"React", "JavaScript", "TypeScript", "Python", "Java"},
	"Problem Solving":  {"Problem Solving"},
	"Communication":    {"Communication"},
	"Collaboration":    {"Teamwork", "Communication & Collaboration"},
	"Learning Ability": {},
}

type ProgressService interface {
	GetProgress(userID *uint) (*dto.ProgressDTO, error)
}

type progressService struct {
	attemptRepo repository.AttemptRepository
	resultRepo  repository.ResultRepository
	attempts    AttemptService
}

func NewProgressService(attemptRepo repository.AttemptRepository, resultRepo repository.ResultRepository, attempts AttemptService) ProgressService {
	return &progressService{attemptRepo: attemptRepo, resultRepo: resultRepo, attempts: attempts}
}

// GetProgress aggregates the user's finished attempts into dashboard stats.
// Stale in_progress attempts are reaped first so they never linger in the
// open state forever; a reap failure only logs.
func (s *progressService) GetProgress(userID *uint) (*dto.ProgressDTO, error) {
	if _, err := s.attempts.AbandonStale(); err != nil {
		log.Warn().Err(err).Msg("Stale attempt cleanup failed during progress fetch")
	}

	attempts, err := s.attemptRepo.FindFinished(userID, progressAttemptWindow)
	if err != nil {
		return nil, err
	}

	attemptIDs := make([]uint, 0, len(attempts))
	for _, a := range attempts {
		attemptIDs = append(attemptIDs, a.ID)
	}
	results, err := s.resultRepo.FindByAttemptIDs(attemptIDs)
	if err != nil {
		return nil, err
	}

	var scores []float64
	skillScores := make(map[string][]float64)
	recent := make([]dto.RecentAssessmentDTO, 0, recentAssessmentLimit)

	for _, attempt := range attempts {
		result, ok := results[attempt.ID]
		if !ok {
			continue
		}
		score := result.PercentageScore
		scores = append(scores, score)

		skill := attempt.Assessment.SkillDomain
		if skill == "" {
			skill = "Unknown"
		}
		skillScores[skill] = append(skillScores[skill], score)

		if len(recent) < recentAssessmentLimit {
			recent = append(recent, dto.RecentAssessmentDTO{
				AttemptID:       attempt.ID,
				SkillName:       NormalizeDomain(skill),
				Title:           NormalizeTitle(attempt.Assessment.Title),
				Score:           math.Round(score*10) / 10,
				MaxScore:        100,
				Date:            attempt.CompletedAt,
				DurationMinutes: attempt.DurationMinutes,
			})
		}
	}

	avg := 0.0
	if len(scores) > 0 {
		for _, v := range scores {
			avg += v
		}
		avg = avg / float64(len(scores))
	}

	return &dto.ProgressDTO{
		TotalAssessments:  len(attempts),
		AvgScore:          math.Round(avg*10) / 10,
		SkillProgress:     buildSkillProgress(skillScores),
		CompetencyScores:  buildCompetencyScores(skillScores, scores),
		RecentAssessments: recent,
	}, nil
}

// buildSkillProgress folds raw domains into standard skill names, then turns
// each bucket into (user average, target benchmark, attempt count).
func buildSkillProgress(skillScores map[string][]float64) map[string]dto.SkillProgressDTO {
	standardized := make(map[string][]float64)
	for skill, values := range skillScores {
		standardized[standardizeSkillName(skill)] = append(standardized[standardizeSkillName(skill)], values...)
	}

	progress := make(map[string]dto.SkillProgressDTO, len(standardized))
	for skill, values := range standardized {
		userLevel := int(average(values))
		target := userLevel + targetLevelMargin
		if target > 100 {
			target = 100
		}
		progress[skill] = dto.SkillProgressDTO{
			UserLevel:   userLevel,
			TargetLevel: target,
			Attempts:    len(values),
		}
	}
	return progress
}

func buildCompetencyScores(skillScores map[string][]float64, allScores []float64) map[string]int {
	competency := make(map[string]int, len(competencyCategories))
	for category, relatedSkills := range competencyCategories {
		var values []float64
		if category == "Learning Ability" {
			values = allScores
		} else {
			for skill, skillValues := range skillScores {
				for _, related := range relatedSkills {
					if strings.Contains(strings.ToLower(skill), strings.ToLower(related)) {
						values = append(values, skillValues...)
						break
					}
				}
			}
		}
		competency[category] = int(average(values))
	}
	return competency
}

func standardizeSkillName(skill string) string {
	lower := strings.ToLower(skill)
	for _, m := range skillNameMapping {
		if strings.Contains(lower, m.indicator) {
			return m.standard
		}
	}
	return NormalizeDomain(skill)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
