package session

import (
	"github.com/kailas-cloud/itemfilter/internal/engine"
)

// Snapshot is the observable state of a session after an operation.
type Snapshot struct {
	ID         string
	Collection string
	View       string
	// Filter is the composed filter in its string form ("*" when nothing filters).
	Filter  string
	Active  map[string][]string
	Shown   []string
	Hidden  []string
	Order   []string
	Count   string
	Sort    string
	Pending bool
}

func (e *entry) snapshot() Snapshot {
	eng := e.eng
	s := Snapshot{
		ID:         e.rec.ID,
		Collection: e.rec.Collection,
		View:       e.rec.View,
		Filter:     eng.Filter().String(),
		Active:     activeValues(eng),
		Shown:      eng.Visible(),
		Hidden:     eng.Hidden(),
		Order:      eng.Order(),
		Count:      eng.Count(),
		Pending:    eng.Pending(),
	}
	if spec, ok := eng.SortSpec(); ok {
		s.Sort = spec.String()
	}
	return s
}

func activeValues(eng *engine.Engine) map[string][]string {
	out := make(map[string][]string)
	for _, g := range eng.Groups() {
		if v := eng.Active(g); len(v) > 0 {
			out[g] = v
		}
	}
	return out
}
