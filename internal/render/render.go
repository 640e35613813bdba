package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"resume-render/internal/domain"
	"resume-render/internal/model"
)

// Logical page size in CSS pixels: US letter at 96 DPI.
const (
	PageWidth  = 816
	PageHeight = 1056
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("resume").ParseFS(templateFS, "templates/*.html"))

// variant describes how one catalog entry draws the shared schema.
type variant struct {
	name string
	// skillLimit and awardLimit cap how many entries the layout shows; 0 means all.
	skillLimit int
	awardLimit int
}

// variantFor is the single dispatch point from template id to renderer.
// Every domain.TemplateID constant must have a case here.
func variantFor(id domain.TemplateID) (variant, bool) {
	switch id {
	case domain.TemplateClassic:
		return variant{name: "classic"}, true
	case domain.TemplateProfessional:
		return variant{name: "professional"}, true
	case domain.TemplateModern:
		return variant{name: "modern"}, true
	case domain.TemplateTech:
		return variant{name: "tech"}, true
	case domain.TemplateCreative:
		return variant{name: "creative"}, true
	case domain.TemplateElegant:
		return variant{name: "elegant"}, true
	case domain.TemplateVisualCV:
		return variant{name: "visual-cv", skillLimit: 4, awardLimit: 2}, true
	}
	return variant{}, false
}

type skill struct {
	Name  string
	Level int
}

type view struct {
	TemplateID    string
	PageStyle     template.CSS
	Accent        template.CSS
	Personal      model.Personal
	HasPhoto      bool
	ProfileHandle string
	Summary       string
	Show          model.SectionVisibility
	Experience    []model.Experience
	Education     []model.Education
	Skills        []skill
	Awards        []model.Award
}

// skillLevels drives the bars of the visual-cv layout.
var skillLevels = map[string]int{
	"Illustrator": 80,
	"Photoshop":   90,
	"Indesign":    70,
	"Ms Word":     95,
}

const defaultSkillLevel = 80

func newView(id domain.TemplateID, v variant, d model.ResumeData) view {
	accent := d.Design.AccentColor
	if !model.IsHexColor(accent) {
		accent = model.DefaultAccentColor
	}
	font := d.Design.FontFamily
	if !model.IsFontFamily(font) {
		font = model.FontInter
	}
	size := d.Design.FontSize
	if size < model.MinFontSize || size > model.MaxFontSize {
		size = model.DefaultFontSize
	}

	skills := make([]skill, 0, len(d.Skills))
	for _, s := range limit(d.Skills, v.skillLimit) {
		level, ok := skillLevels[s]
		if !ok {
			level = defaultSkillLevel
		}
		skills = append(skills, skill{Name: s, Level: level})
	}

	return view{
		TemplateID: string(id),
		PageStyle: template.CSS(fmt.Sprintf(
			"width:%dpx;height:%dpx;font-family:'%s',sans-serif;--font-scale:%g;--accent-color:%s",
			PageWidth, PageHeight, font, float64(size)/100, accent)),
		Accent:        template.CSS(accent),
		Personal:      d.Personal,
		HasPhoto:      d.Personal.PhotoURL != "",
		ProfileHandle: profileHandle(d.Personal.Linkedin),
		Summary:       d.Summary,
		Show:          d.Design.SectionVisibility,
		Experience:    d.Experience,
		Education:     d.Education,
		Skills:        skills,
		Awards:        limit(d.Awards, v.awardLimit),
	}
}

func limit[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

// profileHandle shortens a profile URL for compact headers: the last path
// segment ("/jdoe"), or the registrable domain when the path is empty.
func profileHandle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if seg := strings.Trim(u.Path, "/"); seg != "" {
		parts := strings.Split(seg, "/")
		return "/" + parts[len(parts)-1]
	}
	host := u.Hostname()
	if site, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return site
	}
	return host
}

// Render writes the page tree for template id. The data is only read.
func Render(w io.Writer, id domain.TemplateID, data model.ResumeData) error {
	v, ok := variantFor(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if err := templates.ExecuteTemplate(w, v.name, newView(id, v, data)); err != nil {
		return fmt.Errorf("render %s: %w", id, err)
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(id domain.TemplateID, data model.ResumeData) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, id, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Document wraps the rendered page in a standalone HTML document, suitable
// for export and for the CLI.
func Document(id domain.TemplateID, data model.ResumeData) (string, error) {
	page, err := RenderString(id, data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = templates.ExecuteTemplate(&buf, "document", struct {
		Title string
		Page  template.HTML
	}{
		Title: data.Personal.Name,
		Page:  template.HTML(page),
	})
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return buf.String(), nil
}
