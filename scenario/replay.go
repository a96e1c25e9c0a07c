package scenario

import (
	"context"
	"fmt"

	"github.com/mevdschee/insertorder/action"
	"github.com/mevdschee/insertorder/flush"
	"github.com/mevdschee/insertorder/persister"
)

// Registry registers the persisters of every mapped entity
func (s *Scenario) Registry() (*persister.Registry, error) {
	r, err := persister.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, e := range s.Entities {
		p := &persister.Persister{
			EntityName:     e.Name,
			Table:          e.Table,
			IdentityColumn: e.Identity,
		}
		if e.Discriminator != nil {
			p.Discriminator = &persister.Discriminator{Column: e.Discriminator.Column, Value: e.Discriminator.Value}
		}
		if len(e.Associations) > 0 {
			p.Associations = make(map[string]persister.AssociationDescriptor, len(e.Associations))
			for property, a := range e.Associations {
				p.Associations[property] = a.descriptor()
			}
		}
		if err := r.Register(p); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

func (a Association) descriptor() persister.AssociationDescriptor {
	switch a.Kind {
	case KindOwning:
		return persister.OwningForeignKey{Column: a.Column, Nullable: a.Nullable}
	case KindInverse:
		return persister.InverseSide{MappedBy: a.MappedBy, Mandatory: a.Mandatory}
	case KindEmbedded:
		return persister.EmbeddedIndirect{Path: a.Path, Inner: a.Inner.descriptor()}
	}
	return nil
}

// Replayer feeds the flushes of a scenario into a queue. Identifiers of
// executed inserts are remembered so later flushes can refer to them.
type Replayer struct {
	scenario  *Scenario
	registry  *persister.Registry
	queue     *flush.Queue
	persisted map[string]any
}

// NewReplayer creates a replayer for s using the persisters of registry
func NewReplayer(s *Scenario, registry *persister.Registry, queue *flush.Queue) *Replayer {
	return &Replayer{
		scenario:  s,
		registry:  registry,
		queue:     queue,
		persisted: make(map[string]any),
	}
}

// Run executes every flush and returns one report per flush. It stops at the
// first failing flush.
func (r *Replayer) Run(ctx context.Context) ([]*flush.Report, error) {
	reports := make([]*flush.Report, 0, len(r.scenario.Flushes))
	for n, f := range r.scenario.Flushes {
		base, indices, err := r.stage(f)
		if err != nil {
			r.queue.Clear()
			return reports, fmt.Errorf("flush %d: %w", n+1, err)
		}
		report, err := r.queue.Flush(ctx)
		if err != nil {
			return reports, fmt.Errorf("flush %d: %w", n+1, err)
		}
		for name, idx := range indices {
			r.persisted[name] = report.Keys[base+idx].ID
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Plan computes the plan of every flush without executing anything.
// Identifiers generated by the database are unknown in a plan.
func (r *Replayer) Plan() ([]*flush.Plan, error) {
	plans := make([]*flush.Plan, 0, len(r.scenario.Flushes))
	for n, f := range r.scenario.Flushes {
		_, indices, err := r.stage(f)
		if err != nil {
			r.queue.Clear()
			return plans, fmt.Errorf("flush %d: %w", n+1, err)
		}
		plan, err := r.queue.Plan()
		r.queue.Clear()
		if err != nil {
			return plans, fmt.Errorf("flush %d: %w", n+1, err)
		}
		for name, idx := range indices {
			r.persisted[name] = f.Inserts[idx].ID
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// stage adds the inserts of f to the queue. It returns the queue length
// before staging and the position in f of every named insert.
func (r *Replayer) stage(f Flush) (int, map[string]int, error) {
	base := r.queue.Len()
	indices := make(map[string]int)
	for i, in := range f.Inserts {
		if in.Name != "" {
			indices[in.Name] = base + i
		}
	}

	for _, in := range f.Inserts {
		p, ok := r.registry.Lookup(in.Entity)
		if !ok {
			return base, nil, fmt.Errorf("%w: %q", ErrUnknownEntity, in.Entity)
		}

		columns := make([]action.ColumnValue, len(in.Columns))
		for i, c := range in.Columns {
			columns[i] = action.ColumnValue{Name: c.Name, Value: c.Value}
			if c.Ref == "" {
				continue
			}
			if idx, ok := indices[c.Ref]; ok {
				columns[i].Value = action.Ref{Action: idx}
			} else if id, ok := r.persisted[c.Ref]; ok {
				columns[i].Value = id
			} else {
				return base, nil, fmt.Errorf("%w: %q", ErrUnknownName, c.Ref)
			}
		}

		links := make([]action.Link, len(in.Links))
		for i, l := range in.Links {
			links[i] = action.Link{Property: l.Property, Target: action.Persisted}
			if idx, ok := indices[l.Target]; ok {
				links[i].Target = idx
			} else if _, ok := r.persisted[l.Target]; !ok {
				return base, nil, fmt.Errorf("%w: %q", ErrUnknownName, l.Target)
			}
		}

		r.queue.Add(action.New(p, in.ID, columns, links...))
	}

	for name := range indices {
		indices[name] -= base
	}
	return base, indices, nil
}
