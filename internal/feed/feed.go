// Package feed renders stored records into an iCalendar document for
// subscription by calendar clients.
package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
	"github.com/tartampluch/go-datedots/internal/i18n"
	"github.com/tartampluch/go-datedots/internal/recurrence"
)

// Builder renders records into ICS bytes.
type Builder struct {
	// Localizer provides translated event summaries. Nil falls back to a
	// plain "category: name" form.
	Localizer *i18n.Localizer

	// ReminderTrigger is an ISO8601 duration for VALARM triggers
	// (e.g. "-P1D"). Empty disables reminders.
	ReminderTrigger string
}

// Build generates the calendar for the given records relative to now.
// It returns the ICS data and the number of records whose occurrence is
// today.
func (b *Builder) Build(records []datedot.Record, now time.Time) ([]byte, int, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: suggest a refresh interval.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Local time drives the day logic; UTC is only used for stamping.
	// A date belongs to the user's calendar day, not an absolute instant.
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := 0
	for _, rec := range records {
		events, isToday := b.recordEvents(rec, now)
		if isToday {
			today++
		}
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	log := slog.With(config.LogKeyComponent, config.CompFeed)

	// A calendar with no components is invalid; serve the stub instead so
	// clients do not flag the feed.
	if len(cal.Children) == 0 {
		log.Info(config.MsgFeedSuccess, config.LogKeyCount, 0)
		return []byte(config.StubVCalendar), today, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	log.Info(config.MsgFeedSuccess, config.LogKeyCount, len(records))
	return buf.Bytes(), today, nil
}

// recordEvents generates events for the previous, current and next year so
// clients scrolling their calendar see occurrences without an immediate
// re-sync. Years before a known start year are skipped.
func (b *Builder) recordEvents(rec datedot.Record, now time.Time) ([]*ical.Event, bool) {
	currentYear := now.Year()
	targetYears := []int{currentYear - 1, currentYear, currentYear + 1}
	loc := now.Location()

	var events []*ical.Event
	isToday := false

	todayYear, todayMonth, todayDay := now.Date()

	for _, y := range targetYears {
		if rec.Date.YearKnown() && y < rec.Date.Year {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID,
			fmt.Sprintf(config.FormatUID, rec.NormalizedKey, y, config.ICalDomain))

		age := 0
		if rec.Date.YearKnown() {
			age = y - rec.Date.Year
		}
		event.Props.SetText(config.PropSummary, b.summary(rec, age))

		eventDate := recurrence.In(y, rec.Date, loc)
		if y == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if b.ReminderTrigger != "" {
			addAlarm(event, b.ReminderTrigger, b.summary(rec, age))
		}

		events = append(events, event)
	}
	return events, isToday
}

func (b *Builder) summary(rec datedot.Record, age int) string {
	if b.Localizer == nil {
		return fmt.Sprintf(config.FallbackSummary, rec.Category, rec.Name)
	}
	return b.Localizer.Summary(rec.Name, rec.Category, age, rec.Date.YearKnown())
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid a "VALUE=TEXT" param.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
