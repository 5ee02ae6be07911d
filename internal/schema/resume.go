package schema

// Item is a single annotated entry in the user's resume. Content carries the
// resume text itself; InterviewNotes accumulates observations gathered during
// mock interviews that relate to this item.
type Item struct {
	Content        string `json:"content,omitempty"`
	InterviewNotes string `json:"interview_notes,omitempty"`
}

// IsZero reports whether the item carries no information.
func (i Item) IsZero() bool {
	return i.Content == "" && i.InterviewNotes == ""
}

// ItemCollection groups related resume items under one category, with optional
// notes that apply to the collection as a whole.
type ItemCollection struct {
	Items []Item `json:"items,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// IsZero reports whether the collection carries no information.
func (c ItemCollection) IsZero() bool {
	return len(c.Items) == 0 && c.Notes == ""
}

func (c ItemCollection) merge(patch ItemCollection) ItemCollection {
	if patch.IsZero() {
		return c
	}
	merged := patch
	if merged.Notes == "" {
		merged.Notes = c.Notes
	}
	return merged
}

// AnnotatedResume is the structured profile of the user's professional and
// academic career. The category set is fixed; reconciliation merges patches
// into it category by category and never drops a populated category.
type AnnotatedResume struct {
	ContactInfo              ItemCollection `json:"contact_info,omitempty"`
	Objective                *Item          `json:"objective,omitempty"`
	Education                ItemCollection `json:"education,omitempty"`
	TechnicalSkills          ItemCollection `json:"technical_skills,omitempty"`
	Experience               ItemCollection `json:"experience,omitempty"`
	Activities               ItemCollection `json:"activities,omitempty"`
	Skills                   ItemCollection `json:"skills,omitempty"`
	NonAcademicHonors        ItemCollection `json:"non_academic_honors_and_awards,omitempty"`
	ProfessionalAffiliations ItemCollection `json:"professional_affiliations,omitempty"`
	Other                    ItemCollection `json:"other,omitempty"`
	References               ItemCollection `json:"references,omitempty"`
}

// IsZero reports whether every category is empty.
func (r AnnotatedResume) IsZero() bool {
	return r.ContactInfo.IsZero() &&
		(r.Objective == nil || r.Objective.IsZero()) &&
		r.Education.IsZero() &&
		r.TechnicalSkills.IsZero() &&
		r.Experience.IsZero() &&
		r.Activities.IsZero() &&
		r.Skills.IsZero() &&
		r.NonAcademicHonors.IsZero() &&
		r.ProfessionalAffiliations.IsZero() &&
		r.Other.IsZero() &&
		r.References.IsZero()
}

// Merge folds a patch into the resume. A category mentioned in the patch wins;
// a category the patch leaves empty retains the prior value. Merge never
// mutates the receiver.
func (r AnnotatedResume) Merge(patch AnnotatedResume) AnnotatedResume {
	merged := AnnotatedResume{
		ContactInfo:              r.ContactInfo.merge(patch.ContactInfo),
		Objective:                r.Objective,
		Education:                r.Education.merge(patch.Education),
		TechnicalSkills:          r.TechnicalSkills.merge(patch.TechnicalSkills),
		Experience:               r.Experience.merge(patch.Experience),
		Activities:               r.Activities.merge(patch.Activities),
		Skills:                   r.Skills.merge(patch.Skills),
		NonAcademicHonors:        r.NonAcademicHonors.merge(patch.NonAcademicHonors),
		ProfessionalAffiliations: r.ProfessionalAffiliations.merge(patch.ProfessionalAffiliations),
		Other:                    r.Other.merge(patch.Other),
		References:               r.References.merge(patch.References),
	}
	if patch.Objective != nil && !patch.Objective.IsZero() {
		objective := *patch.Objective
		if objective.InterviewNotes == "" && r.Objective != nil {
			objective.InterviewNotes = r.Objective.InterviewNotes
		}
		merged.Objective = &objective
	}
	return merged
}
