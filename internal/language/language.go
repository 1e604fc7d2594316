package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-2/T, the form the catalog uses
	alt3    string   // ISO 639-2/B alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"da", "dan", "", "Danish", []string{"danish"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"he", "heb", "", "Hebrew", []string{"hebrew"}},
	{"cs", "ces", "cze", "Czech", []string{"czech"}},
	{"hu", "hun", "", "Hungarian", []string{"hungarian"}},
	{"ro", "ron", "rum", "Romanian", []string{"romanian"}},
	{"th", "tha", "", "Thai", []string{"thai"}},
	{"vi", "vie", "", "Vietnamese", []string{"vietnamese"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

// baseCode lower-cases the input and strips region suffixes such as en-US
// or pt_BR down to the base language.
func baseCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	return code
}

func lookup(code string) *entry {
	code = baseCode(code)
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// registryBase resolves codes missing from the table through the IANA
// subtag registry. Well-formed but unassigned codes are rejected.
func registryBase(code string) (xlang.Base, bool) {
	code = baseCode(code)
	if len(code) != 2 && len(code) != 3 {
		return xlang.Base{}, false
	}
	base, err := xlang.ParseBase(code)
	if err != nil {
		return xlang.Base{}, false
	}
	return base, true
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if base, ok := registryBase(code); ok {
		if short := base.String(); len(short) == 2 {
			return short
		}
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if base, ok := registryBase(code); ok {
		return base.ISO3()
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// Same reports whether two language tags name the same language. Blank tags
// never match.
func Same(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return ToISO3(a) == ToISO3(b)
}

// AcceptLanguage returns the value for an HTTP Accept-Language header, or ""
// when the code is unrecognized.
func AcceptLanguage(code string) string {
	return ToISO2(code)
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	if base, ok := registryBase(code); ok {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
