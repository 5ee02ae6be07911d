package schema

import "fmt"

// ApplicationStatus enumerates the lifecycle states of a job application.
type ApplicationStatus string

const (
	StatusInProgress         ApplicationStatus = "In Progress"
	StatusSubmitted          ApplicationStatus = "Submitted"
	StatusRejected           ApplicationStatus = "Rejected"
	StatusInterviewScheduled ApplicationStatus = "Interview Scheduled"
	StatusOfferExtended      ApplicationStatus = "Offer Extended"
	StatusOfferAccepted      ApplicationStatus = "Offer Accepted"
	StatusOfferDeclined      ApplicationStatus = "Offer Declined"
)

// Validate ensures the status is one of the closed set. The empty string is
// allowed in patches and defaults to In Progress at merge time.
func (s ApplicationStatus) Validate() error {
	switch s {
	case "", StatusInProgress, StatusSubmitted, StatusRejected,
		StatusInterviewScheduled, StatusOfferExtended,
		StatusOfferAccepted, StatusOfferDeclined:
		return nil
	}
	return fmt.Errorf("schema: unknown application status %q", string(s))
}

// Company identifies the employer behind a posting.
type Company struct {
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// SalaryRange is the advertised compensation band.
type SalaryRange struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// RequiredExperience captures the experience bar stated by the posting.
type RequiredExperience struct {
	Years int    `json:"years,omitempty"`
	Field string `json:"field,omitempty"`
}

// JobPosting is a snapshot of a job advertisement as the user described it.
type JobPosting struct {
	JobTitle            string              `json:"job_title,omitempty"`
	Company             Company             `json:"company,omitempty"`
	EmploymentType      string              `json:"employment_type,omitempty"`
	JobDescription      string              `json:"job_description,omitempty"`
	Qualifications      []string            `json:"qualifications,omitempty"`
	Responsibilities    []string            `json:"responsibilities,omitempty"`
	SalaryRange         *SalaryRange        `json:"salary_range,omitempty"`
	Benefits            []string            `json:"benefits,omitempty"`
	RequiredExperience  *RequiredExperience `json:"required_experience,omitempty"`
	JobLocationType     string              `json:"job_location_type,omitempty"`
	ApplicationDeadline string              `json:"application_deadline,omitempty"`
	ContactEmail        string              `json:"contact_email,omitempty"`
	PostingDate         string              `json:"posting_date,omitempty"`
}

func (p JobPosting) merge(patch JobPosting) JobPosting {
	merged := p
	if patch.JobTitle != "" {
		merged.JobTitle = patch.JobTitle
	}
	if patch.Company.Name != "" {
		merged.Company.Name = patch.Company.Name
	}
	if patch.Company.Location != "" {
		merged.Company.Location = patch.Company.Location
	}
	if patch.Company.Industry != "" {
		merged.Company.Industry = patch.Company.Industry
	}
	if patch.EmploymentType != "" {
		merged.EmploymentType = patch.EmploymentType
	}
	if patch.JobDescription != "" {
		merged.JobDescription = patch.JobDescription
	}
	if len(patch.Qualifications) > 0 {
		merged.Qualifications = patch.Qualifications
	}
	if len(patch.Responsibilities) > 0 {
		merged.Responsibilities = patch.Responsibilities
	}
	if patch.SalaryRange != nil {
		merged.SalaryRange = patch.SalaryRange
	}
	if len(patch.Benefits) > 0 {
		merged.Benefits = patch.Benefits
	}
	if patch.RequiredExperience != nil {
		merged.RequiredExperience = patch.RequiredExperience
	}
	if patch.JobLocationType != "" {
		merged.JobLocationType = patch.JobLocationType
	}
	if patch.ApplicationDeadline != "" {
		merged.ApplicationDeadline = patch.ApplicationDeadline
	}
	if patch.ContactEmail != "" {
		merged.ContactEmail = patch.ContactEmail
	}
	if patch.PostingDate != "" {
		merged.PostingDate = patch.PostingDate
	}
	return merged
}

// Application pairs a posting snapshot with its status and interview notes.
type Application struct {
	Posting        JobPosting        `json:"posting"`
	Status         ApplicationStatus `json:"status,omitempty"`
	InterviewNotes string            `json:"interview_notes,omitempty"`
}

// Merge folds a patch into the application field by field. Fields the patch
// leaves empty keep their prior values; an empty merged status defaults to
// In Progress.
func (a Application) Merge(patch Application) Application {
	merged := a
	merged.Posting = a.Posting.merge(patch.Posting)
	if patch.Status != "" {
		merged.Status = patch.Status
	}
	if patch.InterviewNotes != "" {
		merged.InterviewNotes = patch.InterviewNotes
	}
	if merged.Status == "" {
		merged.Status = StatusInProgress
	}
	return merged
}

// Validate checks the closed status enum.
func (a Application) Validate() error {
	return a.Status.Validate()
}
