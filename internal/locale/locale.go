// Package locale holds the user-visible strings and the short
// time-of-day format for each supported language.
//
// Strings are looked up through golang.org/x/text/message so that
// plural forms ("1 cup", "2 cups") and decimal separators follow the
// selected language.
package locale

import (
	"strings"
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"golang.org/x/text/number"

	"github.com/hammamikhairi/betterrest/internal/domain"
)

// Message keys. The English text doubles as the key.
const (
	KeyTitle         = "BetterRest"
	KeyWakeHeader    = "When do you want to wake up?"
	KeySleepHeader   = "Desired amount of sleep"
	KeyCoffeeHeader  = "Daily coffee intake"
	KeyBedtimeHeader = "Recommended bedtime"
	KeyHours         = "%v hours"
	KeyCups          = "%d cups"
	KeyFailure       = domain.FailureMessage
)

const (
	layout12h = "3:04 PM"
	layout24h = "15:04"
)

var supported = []language.Tag{
	language.AmericanEnglish, // first entry is the fallback
	language.BritishEnglish,
	language.German,
	language.French,
	language.Polish,
}

var matcher = language.NewMatcher(supported)

var cat = buildCatalog()

// Locale formats strings and times for one language.
type Locale struct {
	tag     language.Tag
	printer *message.Printer
	layout  string
}

// New returns the best supported locale for the given BCP 47 tag or
// POSIX locale name ("en_GB.UTF-8"). Unknown or empty names fall back
// to American English.
func New(name string) *Locale {
	tag := supported[0]
	if t, err := language.Parse(normalize(name)); err == nil {
		_, idx, conf := matcher.Match(t)
		if conf != language.No {
			tag = supported[idx]
		}
	}

	layout := layout24h
	if tag == language.AmericanEnglish {
		layout = layout12h
	}

	return &Locale{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
		layout:  layout,
	}
}

// Default returns the American English locale.
func Default() *Locale { return New("") }

// Tag returns the resolved language tag.
func (l *Locale) Tag() language.Tag { return l.tag }

// TimeLayout returns the short time-of-day layout for this locale.
func (l *Locale) TimeLayout() string { return l.layout }

// FormatTime renders t as hour:minute without seconds or date.
func (l *Locale) FormatTime(t time.Time) string {
	return t.Format(l.layout)
}

// Text returns the translation of one of the Key constants.
func (l *Locale) Text(key string) string {
	return l.printer.Sprintf(key)
}

// Hours renders a sleep amount, e.g. "8.25 hours".
func (l *Locale) Hours(h float64) string {
	return l.printer.Sprintf(KeyHours, number.Decimal(h, number.MaxFractionDigits(2)))
}

// Cups renders a coffee count with the right plural form.
func (l *Locale) Cups(n int) string {
	return l.printer.Sprintf(KeyCups, n)
}

// Failure returns the fixed estimation failure message.
func (l *Locale) Failure() string {
	return l.printer.Sprintf(KeyFailure)
}

// FromEnv picks the locale name from the first non-empty variable among
// names, using lookup (usually os.Getenv).
func FromEnv(lookup func(string) string, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(lookup(n)); v != "" {
			return v
		}
	}
	return ""
}

// normalize turns POSIX locale names into BCP 47 tags.
func normalize(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "", "C", "POSIX":
		return "en-US"
	}
	return strings.ReplaceAll(name, "_", "-")
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))

	set := func(tag language.Tag, key string, msg ...catalog.Message) {
		if err := b.Set(tag, key, msg...); err != nil {
			panic("locale: " + err.Error())
		}
	}
	str := func(tag language.Tag, key, s string) {
		if err := b.SetString(tag, key, s); err != nil {
			panic("locale: " + err.Error())
		}
	}

	for _, en := range []language.Tag{language.AmericanEnglish, language.BritishEnglish} {
		str(en, KeyTitle, "BetterRest")
		str(en, KeyWakeHeader, KeyWakeHeader)
		str(en, KeySleepHeader, KeySleepHeader)
		str(en, KeyCoffeeHeader, KeyCoffeeHeader)
		str(en, KeyBedtimeHeader, KeyBedtimeHeader)
		str(en, KeyHours, KeyHours)
		str(en, KeyFailure, KeyFailure)
		set(en, KeyCups, plural.Selectf(1, "%d",
			"=1", "1 cup",
			"other", "%d cups",
		))
	}

	de := language.German
	str(de, KeyTitle, "BetterRest")
	str(de, KeyWakeHeader, "Wann möchtest du aufwachen?")
	str(de, KeySleepHeader, "Gewünschte Schlafdauer")
	str(de, KeyCoffeeHeader, "Täglicher Kaffeekonsum")
	str(de, KeyBedtimeHeader, "Empfohlene Schlafenszeit")
	str(de, KeyHours, "%v Stunden")
	str(de, KeyFailure, "Entschuldigung, beim Berechnen deiner Schlafenszeit ist ein Problem aufgetreten.")
	set(de, KeyCups, plural.Selectf(1, "%d",
		"=1", "1 Tasse",
		"other", "%d Tassen",
	))

	fr := language.French
	str(fr, KeyTitle, "BetterRest")
	str(fr, KeyWakeHeader, "À quelle heure voulez-vous vous réveiller ?")
	str(fr, KeySleepHeader, "Durée de sommeil souhaitée")
	str(fr, KeyCoffeeHeader, "Consommation quotidienne de café")
	str(fr, KeyBedtimeHeader, "Heure de coucher recommandée")
	str(fr, KeyHours, "%v heures")
	str(fr, KeyFailure, "Désolé, un problème est survenu lors du calcul de votre heure de coucher.")
	set(fr, KeyCups, plural.Selectf(1, "%d",
		"one", "%d tasse",
		"other", "%d tasses",
	))

	pl := language.Polish
	str(pl, KeyTitle, "BetterRest")
	str(pl, KeyWakeHeader, "O której chcesz wstać?")
	str(pl, KeySleepHeader, "Pożądana ilość snu")
	str(pl, KeyCoffeeHeader, "Dzienne spożycie kawy")
	str(pl, KeyBedtimeHeader, "Zalecana pora snu")
	str(pl, KeyHours, "%v godz.")
	str(pl, KeyFailure, "Przepraszamy, wystąpił problem podczas obliczania pory snu.")
	set(pl, KeyCups, plural.Selectf(1, "%d",
		"one", "%d filiżanka",
		"few", "%d filiżanki",
		"other", "%d filiżanek",
	))

	return b
}
