package survey

import "regexp"

var documentRe = regexp.MustCompile(`^\d{7,12}$`)

// ValidDocumentNumber reports whether doc can be used to look a record up:
// 7 to 12 digits and nothing else.
func ValidDocumentNumber(doc string) bool { return documentRe.MatchString(doc) }
