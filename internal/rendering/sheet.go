package rendering

import (
	"github.com/jonathan/resume-builder/internal/types"
)

// PlaceholderName is shown in the header when no full name has been entered.
const PlaceholderName = "Your Name"

// Sheet is the rendered two-column resume: a header, a main column and a side column.
type Sheet struct {
	Header Header    `json:"header"`
	Main   []Section `json:"main"`
	Side   []Section `json:"side"`
}

// Header is the top block of the sheet.
type Header struct {
	Name        string    `json:"name"`
	Placeholder bool      `json:"placeholder,omitempty"`
	Image       string    `json:"image,omitempty"`
	Contacts    []Contact `json:"contacts,omitempty"`
}

// Contact is one contact line in the header. Link is empty when the value is not clickable.
type Contact struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Link  string `json:"link,omitempty"`
}

// Section is one titled block of the sheet.
type Section struct {
	Key     string  `json:"key"`
	Title   string  `json:"title"`
	Text    string  `json:"text,omitempty"`
	Entries []Entry `json:"entries,omitempty"`
}

// Entry is one item inside a section.
type Entry struct {
	Title    string   `json:"title,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Location string   `json:"location,omitempty"`
	Dates    string   `json:"dates,omitempty"`
	Detail   string   `json:"detail,omitempty"`
	Link     string   `json:"link,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// SectionTitles maps each section key to its heading on the sheet.
var SectionTitles = map[string]string{
	types.SectionSummary:        "Professional Summary",
	types.SectionExperience:     "Experience",
	types.SectionEducation:      "Education",
	types.SectionProjects:       "Projects",
	types.SectionSkills:         "Skills",
	types.SectionCertifications: "Certifications",
	types.SectionStrengths:      "Strengths",
	types.SectionAchievements:   "Achievements",
	types.SectionReferences:     "References",
}

// Render projects doc into a sheet. It reads doc only and always produces the
// same sheet for the same document. A nil document renders as an empty one.
//
// A list section is included when its visibility flag is not explicitly false,
// the list is non-empty, and the first item's primary field is filled in.
func Render(doc *types.Document) *Sheet {
	if doc == nil {
		doc = types.NewDocument()
	}
	visible := doc.VisibleSections

	sheet := &Sheet{
		Header: renderHeader(doc.PersonalInfo),
		Main:   []Section{},
		Side:   []Section{},
	}

	if !isBlank(doc.Summary) && visible.Shows(types.SectionSummary) {
		sheet.Main = append(sheet.Main, Section{
			Key:   types.SectionSummary,
			Title: SectionTitles[types.SectionSummary],
			Text:  doc.Summary,
		})
	}

	sheet.Main = appendSection(sheet.Main, visible, types.SectionExperience, doc.Experience,
		func(e types.Experience) string { return e.Position }, experienceEntry)
	sheet.Main = appendSection(sheet.Main, visible, types.SectionEducation, doc.Education,
		func(e types.Education) string { return e.Institution }, educationEntry)
	sheet.Main = appendSection(sheet.Main, visible, types.SectionProjects, doc.Projects,
		func(p types.Project) string { return p.Name }, projectEntry)

	sheet.Side = appendSection(sheet.Side, visible, types.SectionSkills, doc.Skills,
		func(s types.SkillGroup) string { return s.Category }, skillEntry)
	sheet.Side = appendSection(sheet.Side, visible, types.SectionCertifications, doc.Certifications,
		func(c types.Certification) string { return c.Name }, certificationEntry)
	sheet.Side = appendSection(sheet.Side, visible, types.SectionStrengths, doc.Strengths,
		func(s types.Strength) string { return s.Title }, strengthEntry)
	sheet.Side = appendSection(sheet.Side, visible, types.SectionAchievements, doc.Achievements,
		func(a types.Achievement) string { return a.Title }, achievementEntry)
	sheet.Side = appendSection(sheet.Side, visible, types.SectionReferences, doc.References,
		func(r types.Reference) string { return r.Name }, referenceEntry)

	return sheet
}

// SectionKeys lists the keys of every section on the sheet, main column first.
func (s *Sheet) SectionKeys() []string {
	keys := make([]string, 0, len(s.Main)+len(s.Side))
	for _, sec := range s.Main {
		keys = append(keys, sec.Key)
	}
	for _, sec := range s.Side {
		keys = append(keys, sec.Key)
	}
	return keys
}

func appendSection[T any](out []Section, visible types.VisibleSections, key string, items []T, primary func(T) string, entry func(T) Entry) []Section {
	if !visible.Shows(key) || len(items) == 0 || isBlank(primary(items[0])) {
		return out
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, entry(item))
	}
	return append(out, Section{Key: key, Title: SectionTitles[key], Entries: entries})
}

func renderHeader(info types.PersonalInfo) Header {
	header := Header{Name: info.FullName}
	if isBlank(info.FullName) {
		header.Name = PlaceholderName
		header.Placeholder = true
	}
	if IsSafeImage(info.Image) {
		header.Image = info.Image
	}

	if !isBlank(info.Email) {
		header.Contacts = append(header.Contacts, Contact{Kind: "email", Value: info.Email, Link: "mailto:" + info.Email})
	}
	if !isBlank(info.Phone) {
		header.Contacts = append(header.Contacts, Contact{Kind: "phone", Value: info.Phone})
	}
	if !isBlank(info.Location) {
		header.Contacts = append(header.Contacts, Contact{Kind: "location", Value: info.Location})
	}
	if !isBlank(info.LinkedIn) {
		header.Contacts = append(header.Contacts, Contact{Kind: "linkedin", Value: info.LinkedIn, Link: webLink(info.LinkedIn)})
	}
	if !isBlank(info.Website) {
		header.Contacts = append(header.Contacts, Contact{Kind: "website", Value: info.Website, Link: webLink(info.Website)})
	}
	return header
}

func experienceEntry(e types.Experience) Entry {
	return Entry{
		Title:    e.Position,
		Subtitle: e.Company,
		Location: e.Location,
		Dates:    DateRange(e.StartDate, e.EndDate, e.Current),
		Bullets:  SplitBullets(e.Description),
	}
}

func educationEntry(e types.Education) Entry {
	degree := e.Degree
	if !isBlank(e.Field) {
		if isBlank(degree) {
			degree = e.Field
		} else {
			degree = degree + " in " + e.Field
		}
	}
	entry := Entry{
		Title:    e.Institution,
		Subtitle: degree,
		Location: e.Location,
		Dates:    DateRange(e.StartDate, e.EndDate, false),
	}
	if !isBlank(e.GPA) {
		entry.Detail = "GPA: " + e.GPA
	}
	return entry
}

func projectEntry(p types.Project) Entry {
	return Entry{
		Title:   p.Name,
		Link:    webLink(p.Link),
		Bullets: SplitBullets(p.Description),
		Tags:    SplitList(p.Technologies),
	}
}

func skillEntry(s types.SkillGroup) Entry {
	return Entry{Title: s.Category, Tags: SplitList(s.Items)}
}

func certificationEntry(c types.Certification) Entry {
	return Entry{
		Title:    c.Name,
		Subtitle: c.Issuer,
		Dates:    FormatDate(c.Date),
		Link:     webLink(c.Link),
	}
}

func strengthEntry(s types.Strength) Entry {
	return Entry{Title: s.Title, Detail: s.Description}
}

func achievementEntry(a types.Achievement) Entry {
	return Entry{Title: a.Title, Detail: a.Description}
}

func referenceEntry(r types.Reference) Entry {
	return Entry{
		Title:    r.Name,
		Subtitle: joinNonBlank(", ", r.Position, r.Company),
		Detail:   r.Contact,
	}
}
