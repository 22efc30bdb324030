package application

import (
	"fmt"
	"sort"
	"strings"
)

// Anonymize replaces every known display name in text with its numeric id
// before the text leaves the process. Names are substituted longest first
// through unique non-printable placeholders, then placeholders are mapped to
// the final ids in a second pass. Substitution output is therefore never
// re-scanned: a short name can not match inside another name's replacement.
func Anonymize(text string, nameToID map[string]int) string {
	if text == "" || len(nameToID) == 0 {
		return text
	}

	names := make([]string, 0, len(nameToID))
	for name := range nameToID {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	result := text
	placeholders := make(map[string]string, len(names))
	for idx, name := range names {
		placeholder := fmt.Sprintf("\x00PLACEHOLDER_%d\x00", idx)
		placeholders[placeholder] = fmt.Sprintf("%d", nameToID[name])
		result = strings.ReplaceAll(result, name, placeholder)
	}

	for placeholder, id := range placeholders {
		result = strings.ReplaceAll(result, placeholder, id)
	}
	return result
}
