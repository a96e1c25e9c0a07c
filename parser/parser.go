package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// QueryType represents the type of SQL query
type QueryType int

const (
	QueryUnknown QueryType = iota
	QuerySelect
	QueryInsert
	QueryUpdate
	QueryDelete
)

func (t QueryType) String() string {
	switch t {
	case QuerySelect:
		return "SELECT"
	case QueryInsert:
		return "INSERT"
	case QueryUpdate:
		return "UPDATE"
	case QueryDelete:
		return "DELETE"
	}
	return "UNKNOWN"
}

// ParsedQuery contains extracted information from a SQL statement template
type ParsedQuery struct {
	Type         QueryType
	Table        string // Target table of an INSERT
	Placeholders int    // Number of ? parameters
	Query        string // Original query
}

var (
	// Match query type (allows comments before keyword)
	queryTypeRegex = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b`)
	// Match insert into <table> (<columns>) values
	insertRegex = regexp.MustCompile("(?is)\\binsert\\s+into\\s+(['\"`]?[a-zA-Z0-9_$.]+['\"`]?)\\s*\\([^)]*\\)\\s*values\\b")
)

// Parse extracts metadata from a SQL statement
func Parse(query string) *ParsedQuery {
	p := &ParsedQuery{
		Query: query,
		Type:  QueryUnknown,
	}

	// Determine query type
	if matches := queryTypeRegex.FindStringSubmatch(query); matches != nil {
		switch strings.ToUpper(matches[1]) {
		case "SELECT":
			p.Type = QuerySelect
		case "INSERT":
			p.Type = QueryInsert
		case "UPDATE":
			p.Type = QueryUpdate
		case "DELETE":
			p.Type = QueryDelete
		}
	}

	if p.Type == QueryInsert {
		if matches := insertRegex.FindStringSubmatch(query); matches != nil {
			p.Table = strings.Trim(matches[1], "'\"`")
		}
	}

	p.Placeholders = countPlaceholders(query)
	return p
}

// IsBatchable returns true if the statement can be executed as a parameter batch.
// Only INSERT templates are batched by the flush engine.
func (p *ParsedQuery) IsBatchable() bool {
	return p.Type == QueryInsert
}

// PlaceholderStyle is the bind parameter syntax of a driver
type PlaceholderStyle int

const (
	// PlaceholderQuestion is the ? style of sqlite and mysql
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar is the $1 style of postgres
	PlaceholderDollar
)

// StyleForDriver returns the placeholder style of a database/sql driver name
func StyleForDriver(driver string) PlaceholderStyle {
	switch strings.ToLower(driver) {
	case "postgres", "pgx", "pq":
		return PlaceholderDollar
	}
	return PlaceholderQuestion
}

// Rebind rewrites ? placeholders outside string literals to the given style
func Rebind(query string, style PlaceholderStyle) string {
	if style == PlaceholderQuestion {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inString := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inString = !inString
			b.WriteByte(c)
		case c == '?' && !inString:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func countPlaceholders(query string) int {
	n := 0
	inString := false
	for i := 0; i < len(query); i++ {
		switch query[i] {
		case '\'':
			inString = !inString
		case '?':
			if !inString {
				n++
			}
		}
	}
	return n
}
