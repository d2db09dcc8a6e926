package models

// MatcherRequest selects the resume and job universes for a match run
// @Description Match run request: explicit id sets or select-all flags
type MatcherRequest struct {
	UserID           string   `json:"userId" example:"u1"`
	ResumeEntryIDs   []string `json:"resumeEntryIds,omitempty"`
	JobIDs           []string `json:"jobIds,omitempty"`
	SelectAllJobs    bool     `json:"selectallJob,omitempty"`
	SelectAllResumes bool     `json:"selectallResume,omitempty"`
}

// MatcherResponse carries the records newly computed by one match run
// @Description Match run response, results hold only new records
type MatcherResponse struct {
	Message string             `json:"message" example:"Resume matching completed"`
	Success bool               `json:"success"`
	Results []ResumeMatchGroup `json:"results"`
}

// MatchResultsResponse is the flattened historical result listing
// @Description Flattened match results, optionally filtered by fit
type MatchResultsResponse struct {
	Success bool             `json:"success"`
	Results []MatchResultRow `json:"results"`
}

// RegisterRequest creates a new user account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Name     string `json:"name" binding:"required" example:"Jane Doe"`
	Password string `json:"password" binding:"required,min=8" example:"s3cret-pass"`
}

// LoginRequest authenticates an existing user
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// AuthResponse returns the issued token and user info
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// PreparationRequest asks for interview preparation content
type PreparationRequest struct {
	JobDescription string `json:"jobDescription" binding:"required"`
}

// PreparationResponse wraps generated preparation resources
type PreparationResponse struct {
	PreparationResources *PreparationResources `json:"preparationResources"`
}

// ErrorResponse represents an API error response
// @Description Standard error response
type ErrorResponse struct {
	Message string `json:"message" example:"No jobs found."`
	Code    int    `json:"code" example:"404"`
}

// HealthResponse represents health check response
// @Description Server health status
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Version string `json:"version" example:"1.0.0"`
}
