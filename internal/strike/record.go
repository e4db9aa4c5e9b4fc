package strike

// Field is an optional text value.
// Present distinguishes "marker absent" from "marker present with empty value".
type Field struct {
	Value   string
	Present bool
}

// Some returns a present field.
func Some(v string) Field { return Field{Value: v, Present: true} }

// None is the absent field.
var None = Field{}

// String returns the value, or "" when absent.
func (f Field) String() string {
	if !f.Present {
		return ""
	}
	return f.Value
}

// Record is one parsed feed entry.
type Record struct {
	Date      Field
	Sector    Field
	Relevance Field
	Region    Field
	Province  Field
}

// Empty reports whether no field was extracted.
func (r Record) Empty() bool {
	return !r.Date.Present && !r.Sector.Present && !r.Relevance.Present && !r.Region.Present && !r.Province.Present
}
