package library

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func titleCase(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	if len(words) == 0 {
		return stem
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
