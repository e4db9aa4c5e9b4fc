package notifier

import (
	"scioperibot/internal/strike"
	"scioperibot/pkg/tghtml"
)

// missingValue is shown for an always-present line whose field is absent.
const missingValue = "-"

// Render builds the Telegram HTML message for one matched record.
// loc translates feed vocabulary; it must return its input on a miss.
func Render(cond strike.Condition, r strike.Record, loc func(string) string) string {
	if loc == nil {
		loc = func(s string) string { return s }
	}
	value := func(f strike.Field) string {
		if !f.Present || f.Value == "" {
			return missingValue
		}
		return loc(f.Value)
	}
	line := func(label string, f strike.Field, suffix string) tghtml.H {
		return tghtml.Concat(tghtml.B(loc(label)+":"), tghtml.Raw(" "), tghtml.Esc(value(f)), tghtml.Raw(suffix))
	}

	title := tghtml.B("⚠️ " + loc(cond.Name) + " ⚠️")
	body := []tghtml.H{
		line(strike.LabelDate, r.Date, " 📅"),
		line(strike.LabelSector, r.Sector, ""),
		line(strike.LabelRegion, r.Region, ""),
	}
	if r.Province.Present {
		body = append(body, line(strike.LabelProvince, r.Province, ""))
	}
	if r.Relevance.Present {
		body = append(body, line(strike.LabelRelevance, r.Relevance, ""))
	}
	return title.String() + "\n\n" + tghtml.Lines(body...).String() + "\n"
}
