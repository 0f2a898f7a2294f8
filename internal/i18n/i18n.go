// Package i18n holds the user-facing message catalog. Message keys are the
// English texts; Indonesian is the default locale.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	NeedSemesterGrade   = "Enter at least one semester average (S1-S5)."
	NeedUniversity      = "Choose at least one university."
	NeedMajor           = "Choose at least one major."
	MissingMajor        = "Choice %d: choose a major for %s."
	MathRecommended     = "Science track: a mathematics grade is recommended."
	ScienceRecommended  = "Science track: enter at least one of physics, chemistry or biology."
	LanguageRecommended = "Social track: a language grade is recommended."
	RequestFailed       = "Something went wrong while contacting the server. Please try again."
	ChatApology         = "Sorry, I can't answer right now. Please try again in a moment."
	SubmitBusy          = "A prediction is already in progress."
	Probability         = "Admission probability"
	Tips                = "Tips"
	Details             = "Details"
	Preferred           = "Preferred programs"
	Alternatives        = "Alternatives"
	Rank                = "#"
	University          = "University"
	Major               = "Major"
	Chance              = "Chance"
	Competitiveness     = "Competitiveness"
	Band                = "Band"
	StudyPlan           = "Study plan"
	Recommendations     = "Recommendations"
	Typing              = "typing..."
	LabelLow            = "low"
	LabelMedium         = "medium"
	LabelHigh           = "high"
	You                 = "you"
	Bot                 = "bot"
)

var supported = []language.Tag{language.Indonesian, language.English}

var matcher = language.NewMatcher(supported)

var indonesian = map[string]string{
	NeedSemesterGrade:   "Isi minimal satu nilai rata-rata semester (S1-S5).",
	NeedUniversity:      "Pilih minimal satu universitas.",
	NeedMajor:           "Pilih minimal satu jurusan.",
	MissingMajor:        "Pilihan %d: pilih jurusan untuk %s.",
	MathRecommended:     "Saintek: nilai matematika disarankan.",
	ScienceRecommended:  "Saintek: isi minimal satu nilai fisika, kimia, atau biologi.",
	LanguageRecommended: "Soshum: nilai bahasa disarankan.",
	RequestFailed:       "Terjadi kesalahan saat menghubungi server. Silakan coba lagi.",
	ChatApology:         "Maaf, saya belum bisa menjawab sekarang. Silakan coba lagi sebentar.",
	SubmitBusy:          "Prediksi sedang diproses.",
	Probability:         "Peluang diterima",
	Tips:                "Saran",
	Details:             "Rincian",
	Preferred:           "Program pilihan",
	Alternatives:        "Alternatif",
	University:          "Universitas",
	Major:               "Jurusan",
	Chance:              "Peluang",
	Competitiveness:     "Keketatan",
	Band:                "Kategori",
	StudyPlan:           "Rencana belajar",
	Recommendations:     "Rekomendasi",
	Typing:              "mengetik...",
	LabelLow:            "rendah",
	LabelMedium:         "sedang",
	LabelHigh:           "tinggi",
	You:                 "kamu",
	Bot:                 "bot",
}

var cat = mustBuildCatalog(language.Indonesian, indonesian)

func mustBuildCatalog(tag language.Tag, msgs map[string]string) catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range msgs {
		if err := b.SetString(tag, key, text); err != nil {
			panic(fmt.Sprintf("i18n: invalid %s message %q: %v", tag, key, err))
		}
	}
	return b
}

// Printer formats catalog messages for one locale.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a printer for locale (a BCP 47 tag such as "id" or "en").
// Unsupported or malformed tags fall back to Indonesian.
func New(locale string) *Printer {
	tag := language.Indonesian
	if t, err := language.Parse(locale); err == nil {
		_, idx, conf := matcher.Match(t)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Tag returns the resolved locale.
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// Sprintf formats the message registered under key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Percent formats a fraction in [0,1] as a locale-aware percentage with one
// decimal.
func (p *Printer) Percent(fraction float64) string {
	return p.p.Sprintf("%.1f%%", fraction*100)
}
