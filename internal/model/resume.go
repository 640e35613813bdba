package model

// Go models that match resume.schema.json used for validation and rendering.

type Personal struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Linkedin string `json:"linkedin"`
	Location string `json:"location"`
	Initials string `json:"initials"`
	// PhotoURL is empty when the resume has no photo.
	PhotoURL string `json:"photoUrl"`
}

type Experience struct {
	ID          string   `json:"dataId"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Duration    string   `json:"duration"`
	Description []string `json:"description"`
}

type Education struct {
	ID          string `json:"dataId"`
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Duration    string `json:"duration"`
}

type Award struct {
	ID   string `json:"dataId"`
	Name string `json:"name"`
	Date string `json:"date"`
}

type SectionVisibility struct {
	Summary    bool `json:"summary"`
	Experience bool `json:"experience"`
	Education  bool `json:"education"`
	Skills     bool `json:"skills"`
	Awards     bool `json:"awards"`
}

type Design struct {
	AccentColor       string            `json:"accentColor"`
	FontFamily        string            `json:"fontFamily"`
	FontSize          int               `json:"fontSize"`
	SectionVisibility SectionVisibility `json:"sectionVisibility"`
}

type ResumeData struct {
	Personal   Personal     `json:"personal"`
	Summary    string       `json:"summary"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Skills     []string     `json:"skills"`
	Awards     []Award      `json:"awards"`
	Design     Design       `json:"design"`
}

// Section names a toggleable resume section.
type Section string

const (
	SectionSummary    Section = "summary"
	SectionExperience Section = "experience"
	SectionEducation  Section = "education"
	SectionSkills     Section = "skills"
	SectionAwards     Section = "awards"
)

// Sections lists the toggleable sections in form order.
var Sections = []Section{SectionSummary, SectionExperience, SectionEducation, SectionSkills, SectionAwards}

// Visible reports whether s is switched on.
func (v SectionVisibility) Visible(s Section) bool {
	switch s {
	case SectionSummary:
		return v.Summary
	case SectionExperience:
		return v.Experience
	case SectionEducation:
		return v.Education
	case SectionSkills:
		return v.Skills
	case SectionAwards:
		return v.Awards
	}
	return false
}

// Set switches section s on or off. Unknown sections are ignored.
func (v *SectionVisibility) Set(s Section, on bool) bool {
	switch s {
	case SectionSummary:
		v.Summary = on
	case SectionExperience:
		v.Experience = on
	case SectionEducation:
		v.Education = on
	case SectionSkills:
		v.Skills = on
	case SectionAwards:
		v.Awards = on
	default:
		return false
	}
	return true
}

// Clone returns a deep copy so renderers and callers never share list storage
// with the editor that owns the document.
func (d ResumeData) Clone() ResumeData {
	out := d
	if d.Experience != nil {
		out.Experience = make([]Experience, len(d.Experience))
		for i, e := range d.Experience {
			if e.Description != nil {
				e.Description = append(make([]string, 0, len(e.Description)), e.Description...)
			}
			out.Experience[i] = e
		}
	}
	if d.Education != nil {
		out.Education = append(make([]Education, 0, len(d.Education)), d.Education...)
	}
	if d.Awards != nil {
		out.Awards = append(make([]Award, 0, len(d.Awards)), d.Awards...)
	}
	if d.Skills != nil {
		out.Skills = append(make([]string, 0, len(d.Skills)), d.Skills...)
	}
	return out
}
