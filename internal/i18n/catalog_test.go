package i18n

import (
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestCatalog_TranslatesEveryKey(t *testing.T) {
	p := message.NewPrinter(language.Indonesian, message.Catalog(cat))
	for key, want := range indonesian {
		if got := p.Sprintf(key, 1, "x"); got != p.Sprintf(want, 1, "x") {
			t.Errorf("Sprintf(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestMustBuildCatalog_English(t *testing.T) {
	c := mustBuildCatalog(language.English, map[string]string{You: "you there"})
	p := message.NewPrinter(language.English, message.Catalog(c))
	if got := p.Sprintf(You); got != "you there" {
		t.Errorf("Sprintf(You) = %q", got)
	}
}
