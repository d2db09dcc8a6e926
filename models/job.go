package models

import "time"

// Job represents a job posting in the catalog
type Job struct {
	ID              string    `json:"_id" firestore:"-"`
	Title           string    `json:"title" firestore:"title"`
	Company         string    `json:"company" firestore:"company"`
	Location        string    `json:"location" firestore:"location"`
	ExperienceLevel string    `json:"experienceLevel,omitempty" firestore:"experienceLevel"`
	DatePosted      time.Time `json:"datePosted" firestore:"datePosted"`
	Description     string    `json:"description" firestore:"description"`
	URL             string    `json:"url,omitempty" firestore:"url"`
}

// ExperienceLevel constants
const (
	ExperienceInternship = "Internship"
	ExperienceEntry      = "Entry Level"
	ExperienceMid        = "Mid Level"
	ExperienceSenior     = "Senior Level"
	ExperienceExecutive  = "Executive"
)

// JobSearchFilter narrows catalog queries
type JobSearchFilter struct {
	Title           string `json:"title,omitempty" form:"title"`
	Location        string `json:"location,omitempty" form:"location"`
	ExperienceLevel string `json:"experienceLevel,omitempty" form:"experienceLevel"`
}
