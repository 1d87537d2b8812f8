package export

import "strings"

// DefaultFileName is used when the resume has no name.
const DefaultFileName = "resume.pdf"

// FileName derives the download name from the resume owner's full name:
// whitespace runs become a single underscore and ".pdf" is appended.
func FileName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return DefaultFileName
	}
	return strings.Join(fields, "_") + ".pdf"
}

func htmlFileName(fullName string) string {
	return strings.TrimSuffix(FileName(fullName), ".pdf") + ".html"
}
