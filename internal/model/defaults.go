package model

import "github.com/google/uuid"

// Font families offered by the editor.
const (
	FontInter         = "Inter"
	FontLora          = "Lora"
	FontSpaceGrotesk  = "Space Grotesk"
	FontSourceCodePro = "Source Code Pro"
)

// FontFamilies is the enumerated set accepted for Design.FontFamily.
var FontFamilies = []string{FontInter, FontLora, FontSpaceGrotesk, FontSourceCodePro}

// Font size bounds, in percent of the template's base size.
const (
	MinFontSize     = 80
	MaxFontSize     = 120
	DefaultFontSize = 100
)

const (
	DefaultAccentColor = "#09090b"
	DefaultPhotoURL    = "https://placehold.co/150x150.png"
	DefaultSummary     = "Innovative and deadline-driven Full Stack Developer with 5+ years of experience designing and developing user-centered web applications from initial concept to final, polished deliverable."
)

const (
	experienceIDPrefix = "exp-"
	educationIDPrefix  = "edu-"
	awardIDPrefix      = "award-"
)

// NewExperienceID returns a fresh key for an experience entry.
func NewExperienceID() string { return experienceIDPrefix + uuid.NewString() }

// NewEducationID returns a fresh key for an education entry.
func NewEducationID() string { return educationIDPrefix + uuid.NewString() }

// NewAwardID returns a fresh key for an award entry.
func NewAwardID() string { return awardIDPrefix + uuid.NewString() }

func defaultPersonal() Personal {
	return Personal{
		Name:     "John Smith",
		Title:    "Title Position",
		Email:    "mail@yourweb.com",
		Phone:    "+4-234-126-45679",
		Linkedin: "https://yourwebsite.com",
		Location: "Street name, 328, CA",
		Initials: "JS",
		PhotoURL: DefaultPhotoURL,
	}
}

func defaultExperience() []Experience {
	return []Experience{
		{
			ID:       NewExperienceID(),
			Title:    "Senior Frontend Developer",
			Company:  "Tech Solutions Inc.",
			Duration: "Jan 2021 - Present",
			Description: []string{
				"Lead the development of a new e-commerce platform using React and Next.js, resulting in a 40% increase in user engagement.",
				"Mentor junior developers and conduct code reviews to maintain high-quality code standards.",
			},
		},
		{
			ID:       NewExperienceID(),
			Title:    "Full Stack Developer",
			Company:  "Innovatech",
			Duration: "Jun 2018 - Dec 2020",
			Description: []string{
				"Developed and maintained RESTful APIs with Node.js and Express for a suite of internal tools.",
				"Managed database schemas and queries using PostgreSQL and an ORM.",
			},
		},
	}
}

func defaultEducation() []Education {
	return []Education{
		{
			ID:          NewEducationID(),
			Degree:      "Bachelor of Science in Computer Science",
			Institution: "University of Technology",
			Duration:    "2014 - 2018",
		},
	}
}

func defaultSkills() []string {
	return []string{"Illustrator", "Photoshop", "Indesign", "Ms Word", "React", "Next.js", "Node.js"}
}

func defaultAwards() []Award {
	return []Award{
		{ID: NewAwardID(), Name: "Award Name", Date: "2018"},
		{ID: NewAwardID(), Name: "Award Name", Date: "2020"},
	}
}

func defaultVisibility() SectionVisibility {
	return SectionVisibility{Summary: true, Experience: true, Education: true, Skills: true, Awards: true}
}

func defaultDesign() Design {
	return Design{
		AccentColor:       DefaultAccentColor,
		FontFamily:        FontInter,
		FontSize:          DefaultFontSize,
		SectionVisibility: defaultVisibility(),
	}
}

// Default returns the placeholder resume every template is previewed with
// before the user types anything. List ids are fresh on every call.
func Default() ResumeData {
	return ResumeData{
		Personal:   defaultPersonal(),
		Summary:    DefaultSummary,
		Experience: defaultExperience(),
		Education:  defaultEducation(),
		Skills:     defaultSkills(),
		Awards:     defaultAwards(),
		Design:     defaultDesign(),
	}
}

// NewExperience returns a blank entry as appended by the editor form.
func NewExperience() Experience {
	return Experience{ID: NewExperienceID(), Description: []string{""}}
}

// NewEducation returns a blank education entry.
func NewEducation() Education {
	return Education{ID: NewEducationID()}
}

// NewAward returns a blank award entry.
func NewAward() Award {
	return Award{ID: NewAwardID()}
}
