package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidField is wrapped by every *FieldError.
	ErrInvalidField = errors.New("invalid field")
	// ErrItemNotFound is returned when a list item id does not exist.
	ErrItemNotFound = errors.New("list item not found")
)

// FieldError rejects a single edit without touching the document.
type FieldError struct {
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidField, e.Path, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidField }

// List names accepted by AppendListItem and RemoveListItem.
const (
	ListExperience = "experience"
	ListEducation  = "education"
	ListAwards     = "awards"
	ListSkills     = "skills"
)

// SetField assigns value to the dotted path inside d, e.g. "personal.title",
// "experience.0.description.1" or "design.sectionVisibility.awards". List
// positions may be given as an index or as the entry's id. Values that do not
// satisfy the schema are rejected, never clamped.
func (d *ResumeData) SetField(path string, value interface{}) error {
	parts := strings.Split(path, ".")
	fail := func(reason string) error { return &FieldError{Path: path, Reason: reason} }

	switch parts[0] {
	case "summary":
		if len(parts) != 1 {
			return fail("unknown path")
		}
		s, err := asString(value, fail)
		if err != nil {
			return err
		}
		d.Summary = s
		return nil
	case "personal":
		if len(parts) != 2 {
			return fail("unknown path")
		}
		return d.setPersonal(parts[1], value, fail)
	case ListExperience:
		return d.setExperience(parts[1:], value, fail)
	case ListEducation:
		return d.setEducation(parts[1:], value, fail)
	case ListAwards:
		return d.setAward(parts[1:], value, fail)
	case ListSkills:
		return d.setSkills(parts[1:], value, fail)
	case "design":
		return d.setDesign(parts[1:], value, fail)
	}
	return fail("unknown path")
}

func (d *ResumeData) setPersonal(field string, value interface{}, fail func(string) error) error {
	s, err := asString(value, fail)
	if err != nil {
		return err
	}
	p := &d.Personal
	switch field {
	case "name":
		p.Name = s
	case "title":
		p.Title = s
	case "email":
		if !isEmail(s) {
			return fail("not an email address")
		}
		p.Email = s
	case "phone":
		p.Phone = s
	case "linkedin":
		if !isURI(s) {
			return fail("not a url")
		}
		p.Linkedin = s
	case "location":
		p.Location = s
	case "initials":
		p.Initials = s
	case "photoUrl":
		if !validPhotoURL(s) {
			return fail("not a url")
		}
		p.PhotoURL = s
	default:
		return fail("unknown path")
	}
	return nil
}

func (d *ResumeData) setExperience(parts []string, value interface{}, fail func(string) error) error {
	if len(parts) < 2 {
		return fail("unknown path")
	}
	i, ok := indexOf(parts[0], len(d.Experience), func(i int) string { return d.Experience[i].ID })
	if !ok {
		return fail("no such entry")
	}
	e := &d.Experience[i]

	if parts[1] == "description" {
		switch len(parts) {
		case 2:
			list, err := asStrings(value, fail)
			if err != nil {
				return err
			}
			e.Description = list
			return nil
		case 3:
			j, ok := indexOf(parts[2], len(e.Description), nil)
			if !ok {
				return fail("no such bullet")
			}
			s, err := asString(value, fail)
			if err != nil {
				return err
			}
			e.Description[j] = s
			return nil
		}
		return fail("unknown path")
	}
	if len(parts) != 2 {
		return fail("unknown path")
	}
	s, err := asString(value, fail)
	if err != nil {
		return err
	}
	switch parts[1] {
	case "title":
		e.Title = s
	case "company":
		e.Company = s
	case "duration":
		e.Duration = s
	default:
		return fail("unknown path")
	}
	return nil
}

func (d *ResumeData) setEducation(parts []string, value interface{}, fail func(string) error) error {
	if len(parts) != 2 {
		return fail("unknown path")
	}
	i, ok := indexOf(parts[0], len(d.Education), func(i int) string { return d.Education[i].ID })
	if !ok {
		return fail("no such entry")
	}
	s, err := asString(value, fail)
	if err != nil {
		return err
	}
	e := &d.Education[i]
	switch parts[1] {
	case "degree":
		e.Degree = s
	case "institution":
		e.Institution = s
	case "duration":
		e.Duration = s
	default:
		return fail("unknown path")
	}
	return nil
}

func (d *ResumeData) setAward(parts []string, value interface{}, fail func(string) error) error {
	if len(parts) != 2 {
		return fail("unknown path")
	}
	i, ok := indexOf(parts[0], len(d.Awards), func(i int) string { return d.Awards[i].ID })
	if !ok {
		return fail("no such entry")
	}
	s, err := asString(value, fail)
	if err != nil {
		return err
	}
	a := &d.Awards[i]
	switch parts[1] {
	case "name":
		a.Name = s
	case "date":
		a.Date = s
	default:
		return fail("unknown path")
	}
	return nil
}

func (d *ResumeData) setSkills(parts []string, value interface{}, fail func(string) error) error {
	switch len(parts) {
	case 0:
		list, err := asStrings(value, fail)
		if err != nil {
			return err
		}
		d.Skills = list
		return nil
	case 1:
		i, ok := indexOf(parts[0], len(d.Skills), nil)
		if !ok {
			return fail("no such skill")
		}
		s, err := asString(value, fail)
		if err != nil {
			return err
		}
		d.Skills[i] = s
		return nil
	}
	return fail("unknown path")
}

func (d *ResumeData) setDesign(parts []string, value interface{}, fail func(string) error) error {
	if len(parts) == 0 {
		return fail("unknown path")
	}
	switch parts[0] {
	case "accentColor":
		s, err := asString(value, fail)
		if err != nil {
			return err
		}
		if len(parts) != 1 || !IsHexColor(s) {
			return fail("not a hex color")
		}
		d.Design.AccentColor = s
	case "fontFamily":
		s, err := asString(value, fail)
		if err != nil {
			return err
		}
		if len(parts) != 1 || !IsFontFamily(s) {
			return fail("unsupported font family")
		}
		d.Design.FontFamily = s
	case "fontSize":
		f, ok := number(value)
		if !ok || len(parts) != 1 {
			return fail("not a number")
		}
		n, ok := fontSizeValue(f)
		if !ok {
			return fail(fmt.Sprintf("must be an integer between %d and %d", MinFontSize, MaxFontSize))
		}
		d.Design.FontSize = n
	case "sectionVisibility":
		if len(parts) != 2 {
			return fail("unknown path")
		}
		b, ok := value.(bool)
		if !ok {
			return fail("not a boolean")
		}
		if !d.Design.SectionVisibility.Set(Section(parts[1]), b) {
			return fail("unknown section")
		}
	default:
		return fail("unknown path")
	}
	return nil
}

// AppendListItem adds a new entry at the end of list and returns its id. For
// the entity lists item may be nil or a partial object; a supplied id is
// ignored since ids are minted at creation. For skills item must be a string
// and the returned id is the new index.
func (d *ResumeData) AppendListItem(list string, item interface{}) (string, error) {
	fields, _ := item.(map[string]interface{})
	if item != nil && fields == nil && list != ListSkills {
		return "", &FieldError{Path: list, Reason: "item must be an object"}
	}
	switch list {
	case ListExperience:
		e := NewExperience()
		if fields != nil {
			e = parseExperience(fields, e.ID)
		}
		d.Experience = append(d.Experience, e)
		return e.ID, nil
	case ListEducation:
		e := NewEducation()
		if fields != nil {
			e = parseEducation(fields, e.ID)
		}
		d.Education = append(d.Education, e)
		return e.ID, nil
	case ListAwards:
		a := NewAward()
		if fields != nil {
			a = parseAward(fields, a.ID)
		}
		d.Awards = append(d.Awards, a)
		return a.ID, nil
	case ListSkills:
		s, ok := item.(string)
		if !ok {
			return "", &FieldError{Path: list, Reason: "skill must be a string"}
		}
		d.Skills = append(d.Skills, s)
		return strconv.Itoa(len(d.Skills) - 1), nil
	}
	return "", &FieldError{Path: list, Reason: "unknown list"}
}

// RemoveListItem deletes the entry with the given id, preserving the order of
// the remaining entries. Skills are addressed by index.
func (d *ResumeData) RemoveListItem(list, id string) error {
	switch list {
	case ListExperience:
		i, ok := indexByID(id, len(d.Experience), func(i int) string { return d.Experience[i].ID })
		if !ok {
			return fmt.Errorf("%s %s: %w", list, id, ErrItemNotFound)
		}
		d.Experience = append(d.Experience[:i:i], d.Experience[i+1:]...)
	case ListEducation:
		i, ok := indexByID(id, len(d.Education), func(i int) string { return d.Education[i].ID })
		if !ok {
			return fmt.Errorf("%s %s: %w", list, id, ErrItemNotFound)
		}
		d.Education = append(d.Education[:i:i], d.Education[i+1:]...)
	case ListAwards:
		i, ok := indexByID(id, len(d.Awards), func(i int) string { return d.Awards[i].ID })
		if !ok {
			return fmt.Errorf("%s %s: %w", list, id, ErrItemNotFound)
		}
		d.Awards = append(d.Awards[:i:i], d.Awards[i+1:]...)
	case ListSkills:
		i, ok := indexOf(id, len(d.Skills), nil)
		if !ok {
			return fmt.Errorf("%s %s: %w", list, id, ErrItemNotFound)
		}
		d.Skills = append(d.Skills[:i:i], d.Skills[i+1:]...)
	default:
		return &FieldError{Path: list, Reason: "unknown list"}
	}
	return nil
}

// indexOf resolves a path segment to a list position, first by id (when ids
// is non-nil) and then as a decimal index.
func indexOf(seg string, n int, ids func(int) string) (int, bool) {
	if ids != nil {
		if i, ok := indexByID(seg, n, ids); ok {
			return i, true
		}
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

func indexByID(id string, n int, ids func(int) string) (int, bool) {
	for i := 0; i < n; i++ {
		if ids(i) == id {
			return i, true
		}
	}
	return 0, false
}

func asString(v interface{}, fail func(string) error) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fail("not a string")
	}
	return s, nil
}

func asStrings(v interface{}, fail func(string) error) ([]string, error) {
	var items []interface{}
	switch l := v.(type) {
	case []string:
		return append(make([]string, 0, len(l)), l...), nil
	case []interface{}:
		items = l
	default:
		return nil, fail("not a list of strings")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fail("not a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}
