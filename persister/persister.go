package persister

import (
	"fmt"
	"strings"

	"github.com/mevdschee/insertorder/cache"
)

// Discriminator is a literal column written for single-table inheritance
type Discriminator struct {
	Column string
	Value  string
}

// Persister holds the static insert shape of one entity type
type Persister struct {
	EntityName     string
	Table          string
	Discriminator  *Discriminator
	IdentityColumn string // set when the database assigns the identifier on insert
	Associations   map[string]AssociationDescriptor

	templates *cache.Cache
}

// Association returns the descriptor registered for property
func (p *Persister) Association(property string) (AssociationDescriptor, bool) {
	d, ok := p.Associations[property]
	return d, ok
}

// HasIdentity reports whether identifiers are generated by the database
func (p *Persister) HasIdentity() bool {
	return p.IdentityColumn != ""
}

// InsertSQL returns the insert statement template for the given column list.
// The discriminator, if any, is appended as a literal so that subclasses sharing
// a table never share a statement.
func (p *Persister) InsertSQL(columns []string) string {
	key := p.templateKey(columns)
	if p.templates == nil {
		return p.buildSQL(columns)
	}
	return p.templates.GetOrBuild(key, func() string {
		return p.buildSQL(columns)
	})
}

func (p *Persister) templateKey(columns []string) string {
	var b strings.Builder
	b.WriteString(p.EntityName)
	b.WriteByte('|')
	b.WriteString(p.Table)
	b.WriteByte('|')
	b.WriteString(strings.Join(columns, ","))
	return b.String()
}

func (p *Persister) buildSQL(columns []string) string {
	names := make([]string, 0, len(columns)+1)
	values := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		names = append(names, c)
		values = append(values, "?")
	}
	if p.Discriminator != nil {
		names = append(names, p.Discriminator.Column)
		values = append(values, "'"+strings.ReplaceAll(p.Discriminator.Value, "'", "''")+"'")
	}
	return fmt.Sprintf("insert into %s (%s) values (%s)",
		p.Table, strings.Join(names, ","), strings.Join(values, ","))
}
