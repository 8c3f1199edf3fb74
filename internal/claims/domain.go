package claims

import (
	"strings"
	"unicode"
)

var domainKeywords = []struct {
	domain   DomainClass
	keywords []string
}{
	{Medical, []string{"vaccine", "vaccines", "medical", "health", "covid", "disease", "medicine", "doctor", "doctors", "cure", "treatment"}},
	{Political, []string{"election", "elections", "vote", "votes", "voting", "political", "government", "minister", "party", "politician", "democracy"}},
	{Technology, []string{"technology", "5g", "ai", "internet", "phone", "phones", "tracking", "climate", "science", "research", "study"}},
}

// Classify assigns a domain class by keyword. Domains are checked in
// Medical, Political, Technology order; the first match wins.
func Classify(content string) DomainClass {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(content), isSeparator) {
		words[w] = struct{}{}
	}

	for _, d := range domainKeywords {
		for _, k := range d.keywords {
			if _, ok := words[k]; ok {
				return d.domain
			}
		}
	}
	return General
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
