package validator

import "regexp"

var (
	identifierRegex  *regexp.Regexp
	templateKeyRegex *regexp.Regexp
)

// ValidateLayerId reports whether id can name a layer. Layer ids are embedded
// in renderer ids such as "<id>-source", so they start with a letter and hold
// only letters, digits, underscores and dashes.
func ValidateLayerId(id string) bool {
	return identifierRegex.MatchString(id)
}

func ValidatePageId(id string) bool {
	return identifierRegex.MatchString(id)
}

// ValidateTemplateKey reports whether key can be used as a query template placeholder.
func ValidateTemplateKey(key string) bool {
	return templateKeyRegex.MatchString(key)
}

func init() {
	identifierRegex = regexp.MustCompile(`^[[:alpha:]][\w-]*$`)
	templateKeyRegex = regexp.MustCompile(`^\w+$`)
}
