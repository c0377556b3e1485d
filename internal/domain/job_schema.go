package domain

import "jobboard/internal/query"

// Document field names as stored and as accepted in listing parameters.
const (
	FieldTitle        = "title"
	FieldSlug         = "slug"
	FieldPostingDate  = "postingDate"
	FieldLastDate     = "lastDate"
	FieldApplications = "applicantsApplied"
	FieldRevision     = "revision"
	FieldLocation     = "location"
	FieldOwner        = "user"
)

// NewJobQuerySchema describes which job fields listing requests may filter,
// sort and project on.
func NewJobQuerySchema(defaultLimit, maxLimit int64) *query.Schema {
	return &query.Schema{
		Fields: map[string]query.FieldKind{
			"_id":                       query.KindString,
			FieldTitle:                  query.KindString,
			FieldSlug:                   query.KindString,
			"description":               query.KindString,
			"email":                     query.KindString,
			"address":                   query.KindString,
			"company":                   query.KindString,
			"industry":                  query.KindString,
			"jobType":                   query.KindString,
			"minEducation":              query.KindString,
			"experience":                query.KindString,
			"positions":                 query.KindNumber,
			"salary":                    query.KindNumber,
			FieldPostingDate:            query.KindTime,
			FieldLastDate:               query.KindTime,
			FieldOwner:                  query.KindString,
			FieldLocation:               query.KindString,
			"location.city":             query.KindString,
			"location.state":            query.KindString,
			"location.zipcode":          query.KindString,
			"location.country":          query.KindString,
			"location.formattedAddress": query.KindString,
		},
		Hidden:       []string{FieldApplications},
		Revision:     FieldRevision,
		DefaultSort:  []query.SortField{{Field: FieldPostingDate, Desc: true}},
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
	}
}
