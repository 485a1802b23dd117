package loader

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Category names one loadable group of records.
type Category string

const (
	Products   Category = "products"
	Events     Category = "events"
	RDProjects Category = "rd_projects"
	Images     Category = "image"
)

// Kind classifies how a category load ended.
type Kind int

const (
	Loaded Kind = iota
	NotFound
	ParseFailed
	InvalidRecord
	StoreFailed
	CollaboratorFailed
	Skipped
)

var kindNames = [...]string{
	Loaded:             "loaded",
	NotFound:           "not_found",
	ParseFailed:        "parse_failed",
	InvalidRecord:      "invalid_record",
	StoreFailed:        "store_failed",
	CollaboratorFailed: "collaborator_failed",
	Skipped:            "skipped",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Outcome is the result of loading one category. Records counts what was
// written before the load ended, which may be non-zero on failure.
type Outcome struct {
	Category    Category
	Kind        Kind
	Path        string
	Substituted bool
	Records     int
	Err         error
}

// OK reports whether the category loaded.
func (o Outcome) OK() bool { return o.Kind == Loaded }

// MarshalJSON flattens Err to its message.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Category    Category `json:"category"`
		Kind        Kind     `json:"kind"`
		Path        string   `json:"path,omitempty"`
		Substituted bool     `json:"substituted,omitempty"`
		Records     int      `json:"records"`
		Error       string   `json:"error,omitempty"`
	}{o.Category, o.Kind, o.Path, o.Substituted, o.Records, ""}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

// Report summarizes a full load.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	ClearErr  string        `json:"clear_error,omitempty"`
	IndexErr  string        `json:"index_error,omitempty"`
	Outcomes  []Outcome     `json:"outcomes"`
}

// Loaded returns how many categories loaded.
func (r Report) Loaded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// AnyLoaded reports whether at least one category loaded.
func (r Report) AnyLoaded() bool { return r.Loaded() > 0 }

// Outcome returns the outcome recorded for c.
func (r Report) Outcome(c Category) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Category == c {
			return o, true
		}
	}
	return Outcome{}, false
}

// Stats holds the post-load verification counts.
type Stats struct {
	Nodes         map[string]int64 `json:"nodes"`
	Relationships map[string]int64 `json:"relationships"`
}

// Labels returns node labels in sorted order.
func (s Stats) Labels() []string { return slices.Sorted(maps.Keys(s.Nodes)) }

// Types returns relationship types in sorted order.
func (s Stats) Types() []string { return slices.Sorted(maps.Keys(s.Relationships)) }

// State is the loader's position in the load sequence.
type State int

const (
	Idle State = iota
	Cleared
	IndexesCreated
	ProductsLoaded
	EventsLoaded
	RDLoaded
	ImageLoaded
	Done
)

var stateNames = [...]string{"idle", "cleared", "indexes_created", "products_loaded", "events_loaded", "rd_loaded", "image_loaded", "done"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
