package db

import (
	"fmt"
	"strings"
)

// ParamType defines how a list filter maps onto a column.
type ParamType int

const (
	ParamExact  ParamType = iota // column = value
	ParamPrefix                  // case-insensitive prefix match
	ParamNumber                  // supports gt, lt, ge, le, eq prefixes
	ParamDate                    // supports gt, lt, ge, le, eq prefixes
)

// ParamConfig maps a query parameter to its column.
type ParamConfig struct {
	Type   ParamType
	Column string
}

// SearchQuery builds the WHERE clause, ordering and paging of a list query.
type SearchQuery struct {
	table   string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewSearchQuery creates a new SearchQuery for the given table and columns.
func NewSearchQuery(table, cols string) *SearchQuery {
	return &SearchQuery{
		table: table,
		cols:  cols,
		idx:   1,
	}
}

// Add appends a raw WHERE clause fragment (without leading "AND"). Placeholders
// in clause must start at the index returned by Idx.
func (q *SearchQuery) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// Idx returns the next available parameter index.
func (q *SearchQuery) Idx() int { return q.idx }

// likeEscaper escapes the LIKE metacharacters using the default escape
// character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var comparisonPrefixes = map[string]string{
	"eq": "=", "ne": "<>", "gt": ">", "lt": "<", "ge": ">=", "le": "<=",
}

func splitComparison(value string) (string, string) {
	if len(value) > 2 {
		if op, ok := comparisonPrefixes[value[:2]]; ok {
			return op, value[2:]
		}
	}
	return "=", value
}

// ApplyParam applies a single filter using the config.
func (q *SearchQuery) ApplyParam(config ParamConfig, value string) {
	switch config.Type {
	case ParamExact:
		q.Add(fmt.Sprintf("%s = $%d", config.Column, q.idx), value)
	case ParamPrefix:
		q.Add(fmt.Sprintf("%s ILIKE $%d", config.Column, q.idx), likeEscaper.Replace(value)+"%")
	case ParamNumber:
		op, v := splitComparison(value)
		q.Add(fmt.Sprintf("%s %s $%d::numeric", config.Column, op, q.idx), v)
	case ParamDate:
		op, v := splitComparison(value)
		q.Add(fmt.Sprintf("%s %s $%d::timestamptz", config.Column, op, q.idx), v)
	}
}

// ApplyParams applies every known filter from params. Unknown keys are ignored.
func (q *SearchQuery) ApplyParams(params map[string]string, configs map[string]ParamConfig) {
	for name, value := range params {
		if config, ok := configs[name]; ok && value != "" {
			q.ApplyParam(config, value)
		}
	}
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *SearchQuery) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// ApplySort processes a comma separated _sort value ("-total_score,admitted_at")
// using the config column mappings. Falls back to defaultOrder.
func (q *SearchQuery) ApplySort(sortParam, defaultOrder string, configs map[string]ParamConfig) {
	if sortParam == "" {
		q.orderBy = defaultOrder
		return
	}
	var parts []string
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		dir := " ASC"
		if strings.HasPrefix(field, "-") {
			dir = " DESC"
			field = field[1:]
		}
		if config, ok := configs[field]; ok {
			parts = append(parts, config.Column+dir)
		}
	}
	if len(parts) > 0 {
		q.orderBy = strings.Join(parts, ", ")
	} else {
		q.orderBy = defaultOrder
	}
}

// CountSQL returns the count query SQL.
func (q *SearchQuery) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.table, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *SearchQuery) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *SearchQuery) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.table, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	return sql
}

// DataArgs returns the arguments for the data query (search args + limit + offset).
func (q *SearchQuery) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}
