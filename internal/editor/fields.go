package editor

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jonathan/resume-builder/internal/improve"
	"github.com/jonathan/resume-builder/internal/types"
)

var (
	// ErrUnknownSection is returned for a section name the document does not have.
	ErrUnknownSection = errors.New("unknown section")
	// ErrUnknownItem is returned when no list item has the given id.
	ErrUnknownItem = errors.New("unknown item")
	// ErrUnknownField is returned for a field the section does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotText is returned when a non-text field is sent for improvement.
	ErrNotText = errors.New("field is not free text")
)

// FieldRef addresses one field. ItemID is required for list sections and
// ignored otherwise. The summary section has no Field.
type FieldRef struct {
	Section string
	ItemID  string
	Field   string
}

// Path is the dotted field name, e.g. "experience.description" or "summary".
func (r FieldRef) Path() string {
	if r.Section == types.SectionSummary {
		return types.SectionSummary
	}
	return r.Section + "." + r.Field
}

// Key is the in-flight key of the field.
func (r FieldRef) Key() improve.Key {
	if !r.inList() {
		return improve.Key{Field: r.Path()}
	}
	return improve.Key{ItemID: r.ItemID, Field: r.Path()}
}

func (r FieldRef) inList() bool {
	return slices.Contains(types.ListSections, r.Section)
}

func (r FieldRef) String() string {
	if r.inList() {
		return fmt.Sprintf("%s[%s].%s", r.Section, r.ItemID, r.Field)
	}
	return r.Path()
}

// ParseFieldRef reads "summary", "personalInfo.email" or "experience[<id>].description".
func ParseFieldRef(s string) (FieldRef, error) {
	s = strings.TrimSpace(s)
	if s == types.SectionSummary {
		return FieldRef{Section: types.SectionSummary}, nil
	}

	head, field, ok := strings.Cut(s, ".")
	if !ok || field == "" {
		return FieldRef{}, fmt.Errorf("invalid field reference %q", s)
	}

	ref := FieldRef{Section: head, Field: field}
	if open := strings.Index(head, "["); open >= 0 {
		if !strings.HasSuffix(head, "]") || open == 0 {
			return FieldRef{}, fmt.Errorf("invalid field reference %q", s)
		}
		ref.Section = head[:open]
		ref.ItemID = head[open+1 : len(head)-1]
	}
	switch {
	case ref.inList() && ref.ItemID == "":
		return FieldRef{}, fmt.Errorf("field reference %q needs an item id", s)
	case !ref.inList() && ref.ItemID != "":
		return FieldRef{}, fmt.Errorf("field reference %q: %s has no items", s, ref.Section)
	}
	return ref, nil
}

// getField reads the field addressed by ref.
func getField(doc *types.Document, ref FieldRef) (string, error) {
	if ref.Section == types.SectionSummary {
		return doc.Summary, nil
	}
	if ref.Section == types.SectionExperience && ref.Field == "current" {
		item, err := findItem(doc.Experience, ref.ItemID, func(e *types.Experience) string { return e.ID })
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(item.Current), nil
	}
	ptr, err := textField(doc, ref)
	if err != nil {
		return "", err
	}
	return *ptr, nil
}

// setField writes value into the field addressed by ref. "current" accepts strconv.ParseBool input.
func setField(doc *types.Document, ref FieldRef, value string) error {
	if ref.Section == types.SectionSummary {
		doc.Summary = value
		return nil
	}
	if ref.Section == types.SectionExperience && ref.Field == "current" {
		item, err := findItem(doc.Experience, ref.ItemID, func(e *types.Experience) string { return e.ID })
		if err != nil {
			return err
		}
		current, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("current: %w", err)
		}
		item.Current = current
		return nil
	}
	ptr, err := textField(doc, ref)
	if err != nil {
		return err
	}
	*ptr = value
	return nil
}

// textField returns a pointer to a string field inside doc.
func textField(doc *types.Document, ref FieldRef) (*string, error) {
	switch ref.Section {
	case types.SectionSummary:
		return &doc.Summary, nil
	case types.SectionPersonalInfo:
		return pick(ref, map[string]*string{
			"fullName": &doc.PersonalInfo.FullName,
			"email":    &doc.PersonalInfo.Email,
			"phone":    &doc.PersonalInfo.Phone,
			"location": &doc.PersonalInfo.Location,
			"linkedin": &doc.PersonalInfo.LinkedIn,
			"website":  &doc.PersonalInfo.Website,
			"image":    &doc.PersonalInfo.Image,
		})
	case types.SectionExperience:
		e, err := findItem(doc.Experience, ref.ItemID, func(e *types.Experience) string { return e.ID })
		if err != nil {
			return nil, err
		}
		return pick(ref, map[string]*string{
			"company": &e.Company, "position": &e.Position, "location": &e.Location,
			"startDate": &e.StartDate, "endDate": &e.EndDate, "description": &e.Description,
		})
	case types.SectionEducation:
		e, err := findItem(doc.Education, ref.ItemID, func(e *types.Education) string { return e.ID })
		if err != nil {
			return nil, err
		}
		return pick(ref, map[string]*string{
			"institution": &e.Institution, "degree": &e.Degree, "field": &e.Field,
			"startDate": &e.StartDate, "endDate": &e.EndDate, "gpa": &e.GPA, "location": &e.Location,
		})
	case types.SectionProjects:
		p, err := findItem(doc.Projects, ref.ItemID, func(p *types.Project) string { return p.ID })
		if err != nil {
			return nil, err
		}
		return pick(ref, map[string]*string{
			"name": &p.Name, "description": &p.Description, "technologies": &p.Technologies, "link": &p.Link,
		})
	case types.SectionSkills:
		s, err := findItem(doc.Skills, ref.ItemID, func(s *types.SkillGroup) string { return s.ID })
		if err != nil {
			return nil, err
		}
		return pick(ref, map[string]*string{"category": &s.Category, "items": &s.Items})
	case types.SectionCertifications:
		c, err := findItem(doc.Certifications, ref.ItemID, func(c *types.Certification) string { return c.ID })
		if err != nil {
			return nil, err
		}
		return pick(ref, map[string]*string{
			"name": &c.Name, "issuer": &c.Issuer, "date": &c.Date, "link": &c.Link,
		})
	case types.SectionStrengths:
		s, err := findItem(doc.Strengths, ref.ItemID, func(s *types.Strength) string { return s.ID })
		if err != nil {
			return nil, err
		}
		return pick(ref, map[string]*string{"title": &s.Title, "description": &s.Description})
	case types.SectionAchievements:
		a, err := findItem(doc.Achievements, ref.ItemID, func(a *types.Achievement) string { return a.ID })
		if err != nil {
			return nil, err
		}
		return pick(ref, map[string]*string{"title": &a.Title, "description": &a.Description})
	case types.SectionReferences:
		r, err := findItem(doc.References, ref.ItemID, func(r *types.Reference) string { return r.ID })
		if err != nil {
			return nil, err
		}
		return pick(ref, map[string]*string{
			"name": &r.Name, "position": &r.Position, "company": &r.Company, "contact": &r.Contact,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, ref.Section)
	}
}

func pick(ref FieldRef, fields map[string]*string) (*string, error) {
	if ptr, ok := fields[ref.Field]; ok {
		return ptr, nil
	}
	return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, ref.Section, ref.Field)
}

func findItem[T any](items []T, id string, idOf func(*T) string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnknownItem)
	}
	for i := range items {
		if idOf(&items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownItem, id)
}

// addItem appends an empty item with a fresh id to a list section.
func addItem(doc *types.Document, section, id string) error {
	switch section {
	case types.SectionExperience:
		doc.Experience = append(doc.Experience, types.Experience{ID: id})
	case types.SectionEducation:
		doc.Education = append(doc.Education, types.Education{ID: id})
	case types.SectionProjects:
		doc.Projects = append(doc.Projects, types.Project{ID: id})
	case types.SectionSkills:
		doc.Skills = append(doc.Skills, types.SkillGroup{ID: id})
	case types.SectionCertifications:
		doc.Certifications = append(doc.Certifications, types.Certification{ID: id})
	case types.SectionStrengths:
		doc.Strengths = append(doc.Strengths, types.Strength{ID: id})
	case types.SectionAchievements:
		doc.Achievements = append(doc.Achievements, types.Achievement{ID: id})
	case types.SectionReferences:
		doc.References = append(doc.References, types.Reference{ID: id})
	default:
		return fmt.Errorf("%w: %q is not a list section", ErrUnknownSection, section)
	}
	return nil
}

// removeItem drops the item with id from a list section.
func removeItem(doc *types.Document, section, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownItem)
	}
	var removed bool
	switch section {
	case types.SectionExperience:
		doc.Experience, removed = without(doc.Experience, id, func(e types.Experience) string { return e.ID })
	case types.SectionEducation:
		doc.Education, removed = without(doc.Education, id, func(e types.Education) string { return e.ID })
	case types.SectionProjects:
		doc.Projects, removed = without(doc.Projects, id, func(p types.Project) string { return p.ID })
	case types.SectionSkills:
		doc.Skills, removed = without(doc.Skills, id, func(s types.SkillGroup) string { return s.ID })
	case types.SectionCertifications:
		doc.Certifications, removed = without(doc.Certifications, id, func(c types.Certification) string { return c.ID })
	case types.SectionStrengths:
		doc.Strengths, removed = without(doc.Strengths, id, func(s types.Strength) string { return s.ID })
	case types.SectionAchievements:
		doc.Achievements, removed = without(doc.Achievements, id, func(a types.Achievement) string { return a.ID })
	case types.SectionReferences:
		doc.References, removed = without(doc.References, id, func(r types.Reference) string { return r.ID })
	default:
		return fmt.Errorf("%w: %q is not a list section", ErrUnknownSection, section)
	}
	if !removed {
		return fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return nil
}

func without[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out, len(out) != len(items)
}
