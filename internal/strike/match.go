package strike

import "slices"

// Condition is a user rule selecting strikes by sector and region.
type Condition struct {
	Name    string   `json:"name" yaml:"name"`
	Sectors []string `json:"sectors" yaml:"sectors"`
	Regions []string `json:"regions" yaml:"regions"`
}

// Matches reports whether r's sector and region both belong to the condition.
// Absent fields never match.
func (c Condition) Matches(r Record) bool {
	if !r.Sector.Present || !r.Region.Present {
		return false
	}
	return slices.Contains(c.Sectors, r.Sector.Value) && slices.Contains(c.Regions, r.Region.Value)
}

// Match is the feed-ordered subset of records satisfying one condition.
type Match struct {
	Condition Condition
	Records   []Record
}

// MatchAll evaluates every condition against the records. The result has one
// entry per condition, in the order supplied, even when nothing matched.
func MatchAll(conds []Condition, records []Record) []Match {
	out := make([]Match, 0, len(conds))
	for _, c := range conds {
		m := Match{Condition: c}
		for _, r := range records {
			if c.Matches(r) {
				m.Records = append(m.Records, r)
			}
		}
		out = append(out, m)
	}
	return out
}
