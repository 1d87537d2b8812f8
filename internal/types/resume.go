// Package types provides type definitions for structured data used throughout the resume builder.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"maps"

	"github.com/google/uuid"
)

// Section names as they appear in the resume JSON and in visibleSections.
const (
	SectionPersonalInfo   = "personalInfo"
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionProjects       = "projects"
	SectionSkills         = "skills"
	SectionCertifications = "certifications"
	SectionStrengths      = "strengths"
	SectionAchievements   = "achievements"
	SectionReferences     = "references"
)

// ListSections are the sections holding ordered sequences of id-keyed items.
var ListSections = []string{
	SectionExperience,
	SectionEducation,
	SectionProjects,
	SectionSkills,
	SectionCertifications,
	SectionStrengths,
	SectionAchievements,
	SectionReferences,
}

// PersonalInfo holds the resume header. Image is a data URL or an external URL.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
	Image    string `json:"image"`
}

// Experience is one employment entry. Description holds newline-separated bullet lines.
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"` // YYYY-MM
	EndDate     string `json:"endDate"`   // YYYY-MM or empty
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Education is one education entry.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa"`
	Location    string `json:"location"`
}

// Project is one project entry. Technologies is comma-separated free text.
type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Link         string `json:"link"`
}

// SkillGroup is a named group of comma-separated skill items.
type SkillGroup struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Items    string `json:"items"`
}

// Certification is one certification entry.
type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	Link   string `json:"link"`
}

// Strength is a short headline strength with optional detail.
type Strength struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Achievement is a notable achievement.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Reference is a professional reference.
type Reference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Company  string `json:"company"`
	Contact  string `json:"contact"`
}

// VisibleSections maps a section name to whether the preview includes it.
type VisibleSections map[string]bool

// Shows reports whether a section is not explicitly hidden.
func (v VisibleSections) Shows(section string) bool {
	visible, ok := v[section]
	return !ok || visible
}

// DefaultVisibleSections returns the "all true" visibility used when none is supplied.
func DefaultVisibleSections() VisibleSections {
	return VisibleSections{
		SectionStrengths:    true,
		SectionAchievements: true,
		SectionReferences:   true,
		SectionProjects:     true,
	}
}

// Document is the root resume record. It is the unit of persistence.
//
// Extra carries unknown top-level keys so documents written by richer clients
// survive a round trip through this service.
type Document struct {
	PersonalInfo    PersonalInfo    `json:"personalInfo"`
	Summary         string          `json:"summary"`
	Experience      []Experience    `json:"experience"`
	Education       []Education     `json:"education"`
	Projects        []Project       `json:"projects"`
	Skills          []SkillGroup    `json:"skills"`
	Certifications  []Certification `json:"certifications"`
	Strengths       []Strength      `json:"strengths"`
	Achievements    []Achievement   `json:"achievements"`
	References      []Reference     `json:"references"`
	VisibleSections VisibleSections `json:"visibleSections"`

	Extra map[string]json.RawMessage `json:"-"`
}

// documentFields avoids MarshalJSON/UnmarshalJSON recursion.
type documentFields Document

var knownKeys = map[string]bool{
	SectionPersonalInfo:   true,
	SectionSummary:        true,
	SectionExperience:     true,
	SectionEducation:      true,
	SectionProjects:       true,
	SectionSkills:         true,
	SectionCertifications: true,
	SectionStrengths:      true,
	SectionAchievements:   true,
	SectionReferences:     true,
	"visibleSections":     true,
}

// NewDocument returns an empty document with every list empty and every section visible.
func NewDocument() *Document {
	doc := &Document{}
	doc.ApplyDefaults()
	return doc
}

// NewItemID returns a locally-unique id for a list item.
func NewItemID() string {
	return uuid.NewString()
}

// ApplyDefaults replaces absent lists with empty ones and absent visibility with
// all-true, then gives every item a unique id within its section.
func (d *Document) ApplyDefaults() {
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Skills == nil {
		d.Skills = []SkillGroup{}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	if d.Strengths == nil {
		d.Strengths = []Strength{}
	}
	if d.Achievements == nil {
		d.Achievements = []Achievement{}
	}
	if d.References == nil {
		d.References = []Reference{}
	}
	if d.VisibleSections == nil {
		d.VisibleSections = DefaultVisibleSections()
	}
	d.EnsureItemIDs()
}

// EnsureItemIDs assigns a fresh id to every item whose id is empty or repeats an
// earlier item's id in the same section. Unique ids are left untouched.
func (d *Document) EnsureItemIDs() {
	ensureIDs(d.Experience, func(e *Experience) *string { return &e.ID })
	ensureIDs(d.Education, func(e *Education) *string { return &e.ID })
	ensureIDs(d.Projects, func(p *Project) *string { return &p.ID })
	ensureIDs(d.Skills, func(s *SkillGroup) *string { return &s.ID })
	ensureIDs(d.Certifications, func(c *Certification) *string { return &c.ID })
	ensureIDs(d.Strengths, func(s *Strength) *string { return &s.ID })
	ensureIDs(d.Achievements, func(a *Achievement) *string { return &a.ID })
	ensureIDs(d.References, func(r *Reference) *string { return &r.ID })
}

func ensureIDs[T any](items []T, idOf func(*T) *string) {
	seen := make(map[string]bool, len(items))
	for i := range items {
		id := idOf(&items[i])
		if *id == "" || seen[*id] {
			*id = NewItemID()
		}
		seen[*id] = true
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Experience = cloneSlice(d.Experience)
	c.Education = cloneSlice(d.Education)
	c.Projects = cloneSlice(d.Projects)
	c.Skills = cloneSlice(d.Skills)
	c.Certifications = cloneSlice(d.Certifications)
	c.Strengths = cloneSlice(d.Strengths)
	c.Achievements = cloneSlice(d.Achievements)
	c.References = cloneSlice(d.References)
	if d.VisibleSections != nil {
		c.VisibleSections = maps.Clone(d.VisibleSections)
	}
	if d.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// UnmarshalJSON decodes the known fields and keeps every other top-level key in Extra.
// Known fields match their exact key only, so "Summary" lands in Extra rather
// than overwriting "summary".
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	known := make(map[string]json.RawMessage, len(knownKeys))
	var extra map[string]json.RawMessage
	for key, value := range raw {
		if knownKeys[key] {
			known[key] = value
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[key] = value
	}

	knownData, err := json.Marshal(known)
	if err != nil {
		return err
	}
	var fields documentFields
	if err := json.Unmarshal(knownData, &fields); err != nil {
		return err
	}
	fields.Extra = extra

	*d = Document(fields)
	return nil
}

// MarshalJSON encodes the known fields followed by the preserved extra keys.
func (d Document) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(documentFields(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(knownKeys)+len(d.Extra))
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for key, value := range d.Extra {
		if knownKeys[key] {
			continue
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}
