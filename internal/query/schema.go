package query

// FieldKind tells the builder how to coerce a raw parameter value.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindTime
)

// SortField is one key of an ordered sort.
type SortField struct {
	Field string
	Desc  bool
}

// Schema whitelists what a request may touch. Anything not listed in Fields
// is silently ignored by every stage.
type Schema struct {
	Fields map[string]FieldKind
	// Hidden fields are never returned, not even when requested explicitly.
	Hidden []string
	// Revision is the internal revision field omitted from default output.
	Revision     string
	DefaultSort  []SortField
	DefaultLimit int64
	MaxLimit     int64
}

func (s *Schema) has(field string) bool {
	_, ok := s.Fields[field]
	return ok
}

func (s *Schema) hidden(field string) bool {
	for _, h := range s.Hidden {
		if h == field {
			return true
		}
	}
	return false
}

func (s *Schema) defaultLimit() int64 {
	if s.DefaultLimit > 0 {
		return s.DefaultLimit
	}
	return DefaultLimit
}

func (s *Schema) maxLimit() int64 {
	if s.MaxLimit > 0 {
		return s.MaxLimit
	}
	return MaxLimit
}
