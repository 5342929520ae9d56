// Package i18n localizes user-facing event summaries. Locales are embedded
// so the binary stays self-contained.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs for event summaries, per category.
const (
	keyBirthday       = "summary_birthday"
	keyBirthdayAge    = "summary_birthday_age"
	keyBirthdayBirth  = "summary_birthday_birth"
	keyAnniversary    = "summary_anniversary"
	keyAnniversaryAge = "summary_anniversary_age"
	keyHoliday        = "summary_holiday"
	keyCustom         = "summary_custom"
)

// Localizer renders summaries in one configured language.
type Localizer struct {
	loc *goi18n.Localizer
}

// New loads the embedded locales and returns a localizer for lang, falling
// back to English for unknown languages or missing keys.
func New(lang string) *Localizer {
	log := slog.With(config.LogKeyComponent, config.CompI18n)

	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		log.Error(config.ErrLocalesAccess, config.LogKeyError, err)
		return &Localizer{loc: goi18n.NewLocalizer(bundle, lang)}
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			log.Debug(config.MsgLocaleSkip, config.LogKeyFile, name)
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			log.Error(config.ErrLocaleLoad,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		log.Debug(config.MsgLocaleLoaded, config.LogKeyFile, name)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Localizer{loc: goi18n.NewLocalizer(bundle, lang, config.DefaultLanguage)}
}

// Summary renders the event line for a record, e.g. "Birthday: Jane D. (34)".
// Age is included only when the stored date carries a year.
func (l *Localizer) Summary(name string, cat datedot.Category, age int, ageKnown bool) string {
	var key string
	data := map[string]any{"Name": name, "Age": age}

	switch cat {
	case datedot.CategoryBirthday:
		switch {
		case ageKnown && age == 0:
			key = keyBirthdayBirth
		case ageKnown:
			key = keyBirthdayAge
		default:
			key = keyBirthday
		}
	case datedot.CategoryAnniversary:
		if ageKnown && age > 0 {
			key = keyAnniversaryAge
		} else {
			key = keyAnniversary
		}
	case datedot.CategoryHoliday:
		key = keyHoliday
	default:
		key = keyCustom
	}

	msg, err := l.loc.Localize(&goi18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return name
	}
	return msg
}
