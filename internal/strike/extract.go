package strike

import "strings"

// Feed labels (Italian, as published).
const (
	LabelDate      = "Data inizio"
	LabelSector    = "Settore"
	LabelRelevance = "Rilevanza"
	LabelRegion    = "Regione"
	LabelProvince  = "Provincia"
)

// separator delimits fields inside a title. A bare hyphen is not a separator
// so hyphenated names ("Emilia-Romagna") survive.
const separator = " - "

type scanner struct {
	label string
	set   func(r *Record, f Field)
}

var scanners = []scanner{
	{LabelDate, func(r *Record, f Field) { r.Date = f }},
	{LabelSector, func(r *Record, f Field) { r.Sector = f }},
	{LabelRelevance, func(r *Record, f Field) { r.Relevance = f }},
	{LabelRegion, func(r *Record, f Field) { r.Region = f }},
	{LabelProvince, func(r *Record, f Field) { r.Province = f }},
}

// Extract parses a feed entry title. It never fails: fields whose marker is
// missing stay absent.
//
// A value runs from just after "Label:" to the first field separator before
// the next known label. The last field in the title runs to the end of the
// string, separators included.
func Extract(title string) Record {
	marks := make([]int, len(scanners))
	for i, s := range scanners {
		marks[i] = strings.Index(title, s.label+":")
	}

	var r Record
	for i, s := range scanners {
		if marks[i] < 0 {
			continue
		}
		start := marks[i] + len(s.label) + 1
		end := len(title)
		for j, m := range marks {
			if j != i && m >= start && m < end {
				end = m
			}
		}
		if end < len(title) {
			if k := strings.Index(title[start:end], separator); k >= 0 {
				end = start + k
			}
		}
		s.set(&r, Some(cleanValue(title[start:end])))
	}
	return r
}

// ExtractAll parses titles preserving order.
func ExtractAll(titles []string) []Record {
	out := make([]Record, 0, len(titles))
	for _, t := range titles {
		out = append(out, Extract(t))
	}
	return out
}

func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	// Label directly followed by the next one ("Settore: Trasporto -Regione: ...").
	v = strings.TrimSpace(strings.TrimRight(v, "-"))
	return v
}
