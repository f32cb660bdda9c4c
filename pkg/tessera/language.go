package tessera

import (
	"strings"
)

// Language names a Tesseract language pack (<code>.traineddata).
type Language string

// Standard language packs.
const (
	English    Language = "eng"
	French     Language = "fra"
	German     Language = "deu"
	Spanish    Language = "spa"
	Italian    Language = "ita"
	Portuguese Language = "por"
	Dutch      Language = "nld"
	Icelandic  Language = "isl"
	OSD        Language = "osd" // orientation and script detection
)

// Custom names a pack outside the standard set, such as "OCRB".
func Custom(name string) Language { return Language(name) }

func (l Language) Code() string { return string(l) }

// ParseLanguages splits a selector such as "eng+fra" or "eng,fra".
func ParseLanguages(s string) []Language {
	var langs []Language
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' || r == ' ' }) {
		langs = append(langs, Language(f))
	}
	return langs
}

// normalizeLanguages drops empty and repeated entries; no languages means English.
func normalizeLanguages(langs []Language) []Language {
	seen := make(map[Language]bool)
	var out []Language
	for _, l := range langs {
		l = Language(strings.TrimSpace(string(l)))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return []Language{English}
	}
	return out
}

func codes(langs []Language) []string {
	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = l.Code()
	}
	return out
}
