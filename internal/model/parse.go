package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrNotObject is returned by ParseJSON for well-formed JSON that is not an
// object.
var ErrNotObject = errors.New("resume json is not an object")

// Parse turns any loosely shaped value (typically the result of decoding JSON
// or YAML into interface{}) into a complete ResumeData. Every field falls back
// to its default on its own, so a corrupt field never discards the rest.
func Parse(raw interface{}) ResumeData {
	if d, ok := raw.(ResumeData); ok {
		return Parse(Serialize(d))
	}
	root, _ := raw.(map[string]interface{})

	return ResumeData{
		Personal:   parsePersonal(root["personal"]),
		Summary:    stringField(root, "summary", DefaultSummary),
		Experience: parseExperienceList(root),
		Education:  parseEducationList(root),
		Skills:     parseSkills(root),
		Awards:     parseAwardList(root),
		Design:     parseDesign(root["design"]),
	}
}

// ParseJSON decodes b and parses it. Only undecodable or non-object input is
// an error; the returned data is the defaults in that case.
func ParseJSON(b []byte) (ResumeData, error) {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Default(), fmt.Errorf("decode resume json: %w", err)
	}
	if _, ok := raw.(map[string]interface{}); !ok {
		return Default(), ErrNotObject
	}
	return Parse(raw), nil
}

// MarshalJSON serializes d into the persisted JSON shape.
func MarshalJSON(d ResumeData) ([]byte, error) {
	return json.Marshal(Serialize(d))
}

// Serialize is the inverse of Parse: Parse(Serialize(d)) == d for every d
// produced by Parse.
func Serialize(d ResumeData) map[string]interface{} {
	experience := make([]interface{}, 0, len(d.Experience))
	for _, e := range d.Experience {
		experience = append(experience, map[string]interface{}{
			"dataId":      e.ID,
			"title":       e.Title,
			"company":     e.Company,
			"duration":    e.Duration,
			"description": stringsToList(e.Description),
		})
	}
	education := make([]interface{}, 0, len(d.Education))
	for _, e := range d.Education {
		education = append(education, map[string]interface{}{
			"dataId":      e.ID,
			"degree":      e.Degree,
			"institution": e.Institution,
			"duration":    e.Duration,
		})
	}
	awards := make([]interface{}, 0, len(d.Awards))
	for _, a := range d.Awards {
		awards = append(awards, map[string]interface{}{
			"dataId": a.ID,
			"name":   a.Name,
			"date":   a.Date,
		})
	}
	v := d.Design.SectionVisibility

	return map[string]interface{}{
		"personal": map[string]interface{}{
			"name":     d.Personal.Name,
			"title":    d.Personal.Title,
			"email":    d.Personal.Email,
			"phone":    d.Personal.Phone,
			"linkedin": d.Personal.Linkedin,
			"location": d.Personal.Location,
			"initials": d.Personal.Initials,
			"photoUrl": d.Personal.PhotoURL,
		},
		"summary":    d.Summary,
		"experience": experience,
		"education":  education,
		"skills":     stringsToList(d.Skills),
		"awards":     awards,
		"design": map[string]interface{}{
			"accentColor": d.Design.AccentColor,
			"fontFamily":  d.Design.FontFamily,
			"fontSize":    d.Design.FontSize,
			"sectionVisibility": map[string]interface{}{
				"summary":    v.Summary,
				"experience": v.Experience,
				"education":  v.Education,
				"skills":     v.Skills,
				"awards":     v.Awards,
			},
		},
	}
}

func parsePersonal(raw interface{}) Personal {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return defaultPersonal()
	}
	def := defaultPersonal()

	p := Personal{
		Name:     stringField(m, "name", def.Name),
		Title:    stringField(m, "title", def.Title),
		Email:    checkedStringField(m, "email", def.Email, isEmail),
		Phone:    stringField(m, "phone", def.Phone),
		Linkedin: checkedStringField(m, "linkedin", def.Linkedin, isURI),
		Location: stringField(m, "location", def.Location),
		Initials: stringField(m, "initials", def.Initials),
		PhotoURL: def.PhotoURL,
	}
	// photoUrl is optional: explicit null or "" means no photo.
	if v, present := m["photoUrl"]; present {
		switch s := v.(type) {
		case nil:
			p.PhotoURL = ""
		case string:
			if validPhotoURL(s) {
				p.PhotoURL = s
			}
		}
	}
	return p
}

func parseExperienceList(root map[string]interface{}) []Experience {
	items, ok := listField(root, "experience")
	if !ok {
		return defaultExperience()
	}
	out := make([]Experience, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, parseExperience(m, idField(m, seen, NewExperienceID)))
	}
	return out
}

func parseExperience(m map[string]interface{}, id string) Experience {
	e := Experience{
		ID:          id,
		Title:       stringField(m, "title", ""),
		Company:     stringField(m, "company", ""),
		Duration:    stringField(m, "duration", ""),
		Description: []string{""},
	}
	if items, ok := listField(m, "description"); ok {
		e.Description = stringItems(items)
	}
	return e
}

func parseEducationList(root map[string]interface{}) []Education {
	items, ok := listField(root, "education")
	if !ok {
		return defaultEducation()
	}
	out := make([]Education, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, parseEducation(m, idField(m, seen, NewEducationID)))
	}
	return out
}

func parseEducation(m map[string]interface{}, id string) Education {
	return Education{
		ID:          id,
		Degree:      stringField(m, "degree", ""),
		Institution: stringField(m, "institution", ""),
		Duration:    stringField(m, "duration", ""),
	}
}

func parseAwardList(root map[string]interface{}) []Award {
	items, ok := listField(root, "awards")
	if !ok {
		return defaultAwards()
	}
	out := make([]Award, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, parseAward(m, idField(m, seen, NewAwardID)))
	}
	return out
}

func parseAward(m map[string]interface{}, id string) Award {
	return Award{
		ID:   id,
		Name: stringField(m, "name", ""),
		Date: stringField(m, "date", ""),
	}
}

func parseSkills(root map[string]interface{}) []string {
	items, ok := listField(root, "skills")
	if !ok {
		return defaultSkills()
	}
	return stringItems(items)
}

func parseDesign(raw interface{}) Design {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return defaultDesign()
	}
	d := Design{
		AccentColor:       checkedStringField(m, "accentColor", DefaultAccentColor, IsHexColor),
		FontFamily:        checkedStringField(m, "fontFamily", FontInter, IsFontFamily),
		FontSize:          DefaultFontSize,
		SectionVisibility: defaultVisibility(),
	}
	if n, ok := fontSizeValue(m["fontSize"]); ok {
		d.FontSize = n
	}
	if vm, ok := m["sectionVisibility"].(map[string]interface{}); ok {
		for _, s := range Sections {
			if b, ok := vm[string(s)].(bool); ok {
				d.SectionVisibility.Set(s, b)
			}
		}
	}
	return d
}

// fontSizeValue accepts any integral number in [MinFontSize, MaxFontSize].
func fontSizeValue(v interface{}) (int, bool) {
	f, ok := number(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	if f < MinFontSize || f > MaxFontSize {
		return 0, false
	}
	return int(f), true
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return number(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func stringField(m map[string]interface{}, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

func checkedStringField(m map[string]interface{}, key, def string, valid func(string) bool) string {
	if s, ok := m[key].(string); ok && valid(s) {
		return s
	}
	return def
}

// idField returns the entry's dataId, or a fresh one when it is missing or
// already taken by an earlier entry of the same list.
func idField(m map[string]interface{}, seen map[string]bool, gen func() string) string {
	id, _ := m["dataId"].(string)
	for id == "" || seen[id] {
		id = gen()
	}
	seen[id] = true
	return id
}

// listField returns the list stored under key. ok is false when the key is
// missing or holds something that is not a list.
func listField(m map[string]interface{}, key string) ([]interface{}, bool) {
	switch l := m[key].(type) {
	case []interface{}:
		return l, true
	case []string:
		items := make([]interface{}, len(l))
		for i, s := range l {
			items[i] = s
		}
		return items, true
	case []map[string]interface{}:
		items := make([]interface{}, len(l))
		for i, e := range l {
			items[i] = e
		}
		return items, true
	}
	return nil, false
}

func stringItems(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringsToList(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
