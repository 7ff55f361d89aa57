package token

// Range is a half-open [Start, End) byte range into the source text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains returns true if the range contains the given offset.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Len returns the number of bytes covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// Cover returns the smallest range containing both r and o.
func (r Range) Cover(o Range) Range {
	out := r
	if o.Start < out.Start {
		out.Start = o.Start
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}

// IsValid returns true if the range is non-negative and ordered.
func (r Range) IsValid() bool {
	return r.Start >= 0 && r.Start <= r.End
}
