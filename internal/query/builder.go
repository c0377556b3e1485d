// Package query turns untrusted listing parameters into a bounded document
// store query. Every stage is a pure function over an immutable Builder, so
// stages can be layered in any order before a single execution.
package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 10
	MaxLimit     int64 = 100
)

// Control keys shape the query and are never data filters.
const (
	KeySort   = "sort"
	KeyFields = "fields"
	KeyPage   = "page"
	KeyLimit  = "limit"
)

var controlKeys = []string{KeySort, KeyFields, KeyPage, KeyLimit}

// comparisonOps is the full whitelist of bracket operators.
var comparisonOps = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
}

var keyPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*(?:\.[A-Za-z][A-Za-z0-9_]*)*)(?:\[([A-Za-z]+)\])?$`)

// Params is the raw request parameter mapping.
type Params map[string][]string

// FromValues adapts url.Values.
func FromValues(v url.Values) Params {
	return Params(v)
}

func (p Params) first(key string) (string, bool) {
	vals, ok := p[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return strings.TrimSpace(vals[0]), true
}

// Spec is the fully composed query handed to the store.
type Spec struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Page       int64
	Skip       int64
	Limit      int64
}

// Builder composes a Spec. Its methods return a modified copy and never
// mutate the receiver.
type Builder struct {
	schema *Schema
	params Params
	spec   Spec
	errs   []string
}

// New starts a builder over params constrained by schema. The initial spec
// matches everything with no sort, projection or window.
func New(schema *Schema, params Params) Builder {
	return Builder{
		schema: schema,
		params: params,
		spec:   Spec{Filter: bson.M{}},
	}
}

// Filter rewrites the non-control parameters into equality and comparison
// conditions.
func (b Builder) Filter() Builder {
	params := make(Params, len(b.params))
	for k, v := range b.params {
		params[k] = v
	}
	for _, k := range controlKeys {
		delete(params, k)
	}

	type condition struct {
		eq  []any
		ops bson.M
	}
	conds := make(map[string]*condition)
	var errs []string

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := keyPattern.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		field, op := m[1], m[2]
		kind, ok := b.schema.Fields[field]
		if !ok {
			continue
		}
		mongoOp := ""
		if op != "" {
			if mongoOp, ok = comparisonOps[op]; !ok {
				continue
			}
		}

		c := conds[field]
		if c == nil {
			c = &condition{}
		}
		var parsed []any
		for _, raw := range params[key] {
			v, err := coerce(kind, strings.TrimSpace(raw))
			if err != nil {
				errs = append(errs, fmt.Sprintf("Invalid value for %s: %q", key, raw))
				continue
			}
			parsed = append(parsed, v)
		}
		if len(parsed) == 0 {
			continue
		}
		if mongoOp == "" {
			c.eq = append(c.eq, parsed...)
		} else {
			if c.ops == nil {
				c.ops = bson.M{}
			}
			// last value wins for repeated comparisons
			c.ops[mongoOp] = parsed[len(parsed)-1]
		}
		conds[field] = c
	}

	filter := bson.M{}
	for field, c := range conds {
		var eq any
		switch len(c.eq) {
		case 0:
		case 1:
			eq = c.eq[0]
		default:
			eq = bson.M{"$in": c.eq}
		}
		switch {
		case c.ops == nil:
			filter[field] = eq
		case eq == nil:
			filter[field] = c.ops
		default:
			if in, ok := eq.(bson.M); ok {
				c.ops["$in"] = in["$in"]
			} else {
				c.ops["$eq"] = eq
			}
			filter[field] = c.ops
		}
	}

	b.spec.Filter = filter
	b.errs = append(append([]string(nil), b.errs...), errs...)
	return b
}

// Sort applies the comma separated sort parameter; a leading '-' sorts
// descending. Without a usable sort the schema default applies.
func (b Builder) Sort() Builder {
	var fields []SortField
	if raw, ok := b.params.first(KeySort); ok && raw != "" {
		seen := make(map[string]bool)
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			desc := strings.HasPrefix(part, "-")
			part = strings.TrimPrefix(strings.TrimPrefix(part, "-"), "+")
			if part == "" || seen[part] || !b.schema.has(part) {
				continue
			}
			seen[part] = true
			fields = append(fields, SortField{Field: part, Desc: desc})
		}
	}
	if len(fields) == 0 {
		fields = b.schema.DefaultSort
	}

	sortDoc := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		sortDoc = append(sortDoc, bson.E{Key: f.Field, Value: dir})
	}
	b.spec.Sort = sortDoc
	return b
}

// LimitFields restricts the returned fields to the comma separated fields
// parameter, or hides the revision and hidden fields by default.
func (b Builder) LimitFields() Builder {
	projection := bson.M{}
	if raw, ok := b.params.first(KeyFields); ok && raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" || !b.schema.has(part) || b.schema.hidden(part) {
				continue
			}
			projection[part] = 1
		}
	}
	if len(projection) == 0 {
		if b.schema.Revision != "" {
			projection[b.schema.Revision] = 0
		}
		for _, h := range b.schema.Hidden {
			projection[h] = 0
		}
	}
	b.spec.Projection = projection
	return b
}

// Paginate sets the skip/limit window. Missing, malformed or non-positive
// values fall back to the defaults; limit is capped at the schema maximum.
func (b Builder) Paginate() Builder {
	page := parsePositive(b.params, KeyPage, DefaultPage)
	limit := parsePositive(b.params, KeyLimit, b.schema.defaultLimit())
	if maxLimit := b.schema.maxLimit(); limit > maxLimit {
		limit = maxLimit
	}
	if page-1 > math.MaxInt64/limit {
		page = math.MaxInt64/limit + 1
	}
	b.spec.Page = page
	b.spec.Limit = limit
	b.spec.Skip = (page - 1) * limit
	return b
}

// Spec returns the composed query.
func (b Builder) Spec() Spec {
	return b.spec
}

// Errors lists the parameter values that could not be coerced.
func (b Builder) Errors() []string {
	return append([]string(nil), b.errs...)
}

// Build runs the canonical pipeline: filter, sort, fields, pagination.
func Build(schema *Schema, params Params) (Spec, []string) {
	b := New(schema, params).Filter().Sort().LimitFields().Paginate()
	return b.Spec(), b.Errors()
}

func parsePositive(p Params, key string, def int64) int64 {
	raw, ok := p.first(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func coerce(kind FieldKind, raw string) (any, error) {
	switch kind {
	case KindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("not a number: %q", raw)
		}
		return f, nil
	case KindTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("not a date: %q", raw)
	default:
		return raw, nil
	}
}
