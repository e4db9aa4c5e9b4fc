package strike

import "testing"

func TestConditionMatches(t *testing.T) {
	t.Parallel()
	rec := Record{Sector: Some("Trasporto"), Region: Some("Lazio")}
	tests := []struct {
		name string
		cond Condition
		rec  Record
		want bool
	}{
		{
			name: "sector and region in sets",
			cond: Condition{Sectors: []string{"Trasporto"}, Regions: []string{"Lazio", "Lombardia"}},
			rec:  rec, want: true,
		},
		{
			name: "sector mismatch",
			cond: Condition{Sectors: []string{"Sanità"}, Regions: []string{"Lazio"}},
			rec:  rec, want: false,
		},
		{
			name: "region mismatch",
			cond: Condition{Sectors: []string{"Trasporto"}, Regions: []string{"Puglia"}},
			rec:  rec, want: false,
		},
		{
			name: "absent region",
			cond: Condition{Sectors: []string{"Trasporto"}, Regions: []string{""}},
			rec:  Record{Sector: Some("Trasporto")}, want: false,
		},
		{
			name: "case sensitive",
			cond: Condition{Sectors: []string{"trasporto"}, Regions: []string{"Lazio"}},
			rec:  rec, want: false,
		},
		{name: "empty sets", cond: Condition{}, rec: rec, want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cond.Matches(tt.rec); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchAllOrdering(t *testing.T) {
	t.Parallel()
	records := []Record{
		{Sector: Some("Trasporto"), Region: Some("Lazio"), Province: Some("Roma")},
		{Sector: Some("Sanità"), Region: Some("Lazio")},
		{Sector: Some("Trasporto"), Region: Some("Lazio"), Province: Some("Latina")},
	}
	conds := []Condition{
		{Name: "health", Sectors: []string{"Sanità"}, Regions: []string{"Lazio"}},
		{Name: "transport", Sectors: []string{"Trasporto"}, Regions: []string{"Lazio"}},
		{Name: "nothing", Sectors: []string{"Scuola"}, Regions: []string{"Lazio"}},
	}
	got := MatchAll(conds, records)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Condition.Name != "health" || len(got[0].Records) != 1 {
		t.Fatalf("unexpected first match: %+v", got[0])
	}
	tr := got[1].Records
	if len(tr) != 2 || tr[0].Province.Value != "Roma" || tr[1].Province.Value != "Latina" {
		t.Fatalf("feed order not preserved: %+v", tr)
	}
	if len(got[2].Records) != 0 {
		t.Fatalf("expected no records for %q", got[2].Condition.Name)
	}
}
