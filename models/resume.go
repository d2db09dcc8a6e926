package models

import "time"

// ResumeEntry is one uploaded resume document belonging to a user. The
// file bytes live in Cloud Storage; StoragePath is the object name.
type ResumeEntry struct {
	ID          string       `json:"_id" firestore:"-"`
	UserID      string       `json:"userId" firestore:"userId"`
	Filename    string       `json:"filename" firestore:"filename"`
	StoragePath string       `json:"path" firestore:"storagePath"`
	Stats       *ResumeStats `json:"stats,omitempty" firestore:"stats"`
	UploadedAt  time.Time    `json:"uploadedAt" firestore:"uploadedAt"`
}

// SkillRating is a single technical skill with an estimated proficiency
// out of 100.
type SkillRating struct {
	SkillName  string  `json:"skillName" firestore:"skillName"`
	SkillLevel float64 `json:"skillLevel" firestore:"skillLevel"`
}

// ResumeStats is the standalone critique of a resume: strengths,
// weaknesses and skill proficiency estimates. The lists always carry at
// least one entry so downstream consumers have something to render.
type ResumeStats struct {
	Strengths  []string      `json:"strengths" firestore:"strengths"`
	Weaknesses []string      `json:"weaknesses" firestore:"weaknesses"`
	Skills     []SkillRating `json:"skills" firestore:"skills"`
}

// FallbackResumeStats signals analysis failure with a single
// explanatory entry per list rather than empty arrays.
func FallbackResumeStats() *ResumeStats {
	return &ResumeStats{
		Strengths:  []string{"Unable to retrieve strengths."},
		Weaknesses: []string{"Unable to retrieve weaknesses."},
		Skills:     []SkillRating{{SkillName: "Error fetching skills", SkillLevel: 0}},
	}
}

// PreparationResources is interview preparation content generated for a
// job description.
type PreparationResources struct {
	KeySkills          []string `json:"keySkills"`
	InterviewQuestions []string `json:"interviewQuestions"`
	PreparationTips    []string `json:"preparationTips"`
}
