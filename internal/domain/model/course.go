package model

import "time"

type SkillArea string

const (
	SkillAILiteracy             SkillArea = "ai_literacy"
	SkillLogicalThinking        SkillArea = "logical_thinking"
	SkillCreativeProblemSolving SkillArea = "creative_problem_solving"
	SkillFutureCareer           SkillArea = "future_career_skills"
	SkillSystemsThinking        SkillArea = "systems_thinking"
	SkillInnovationMethods      SkillArea = "innovation_methods"
)

// SkillAreas lists every skill area in curriculum order.
func SkillAreas() []SkillArea {
	return []SkillArea{
		SkillAILiteracy,
		SkillLogicalThinking,
		SkillCreativeProblemSolving,
		SkillFutureCareer,
		SkillSystemsThinking,
		SkillInnovationMethods,
	}
}

type Video struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	StorageKey      string `json:"-"`
	DurationSeconds int    `json:"duration_seconds"`
	Position        int    `json:"position"`
}

// Course is the read model used by the access checkpoints.
type Course struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	LearningLevel   LearningLevel `json:"learning_level"`
	SkillAreas      []SkillArea   `json:"skill_areas"`
	AgeGroup        AgeTier       `json:"age_group"`
	IsPremium       bool          `json:"is_premium"`
	IsPublished     bool          `json:"is_published"`
	DifficultyLevel int           `json:"difficulty_level"`
	CreatedBy       string        `json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	Videos          []Video       `json:"videos"`
}

func (c *Course) Video(id string) (*Video, bool) {
	for i := range c.Videos {
		if c.Videos[i].ID == id {
			return &c.Videos[i], true
		}
	}
	return nil, false
}

// CourseFilter narrows catalog listings. Zero values mean "any".
type CourseFilter struct {
	LearningLevel LearningLevel
	AgeGroup      AgeTier
	SkillArea     SkillArea
	PublishedOnly bool
	Limit         int
}
