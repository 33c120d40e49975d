package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/models"
)

// Dispatcher event types.
const (
	EventInit            = "init"
	EventRefresh         = "refresh"
	EventProjectSelected = "project.selected"
	EventFileSelected    = "file.selected"
	EventGenesChanged    = "genes.changed"
	EventSortChanged     = "sort.changed"
	EventPageChanged     = "page.changed"
	EventRowSelected     = "row.selected"
)

// ErrInvalidEvent is returned by Dispatch for an event that fails validation.
var ErrInvalidEvent = errors.New("invalid event")

// State is the dashboard selection. The client holds it and sends it back
// with every event.
type State struct {
	Project string `json:"project"`
	File    string `json:"file"`
	Genes   string `json:"genes"`
	Sort    string `json:"sort"`
	Desc    bool   `json:"desc"`
	Page    int    `json:"page"`
	Row     *int   `json:"row"`
	ViewID  string `json:"view_id"`
}

// Query returns the part of the state that shapes the table view.
func (s State) Query() gsea.Query {
	return gsea.Query{Genes: s.Genes, Sort: s.Sort, Desc: s.Desc}
}

// Event is one user interaction.
//
// Value carries the project, file, gene query or sort column depending on
// Type. Desc goes with sort.changed, Page with page.changed, Row and ViewID
// with row.selected.
type Event struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Desc   bool   `json:"desc"`
	Page   int    `json:"page"`
	Row    *int   `json:"row"`
	ViewID string `json:"view_id"`
}

// Validate validates the event.
func (e Event) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Type, validation.Required, validation.In(
			EventInit, EventRefresh, EventProjectSelected, EventFileSelected,
			EventGenesChanged, EventSortChanged, EventPageChanged, EventRowSelected,
		)),
		validation.Field(&e.Value,
			validation.When(e.Type == EventProjectSelected || e.Type == EventFileSelected, validation.Required),
			validation.When(e.Type == EventSortChanged, validation.By(sortColumn)),
		),
		validation.Field(&e.Page, validation.Min(0)),
		validation.Field(&e.Row,
			validation.When(e.Type == EventRowSelected, validation.NotNil),
			validation.Min(0),
		),
		validation.Field(&e.ViewID, validation.When(e.Type == EventRowSelected, validation.Required)),
	)
}

func sortColumn(value any) error {
	s, _ := value.(string)
	if s == "" || gsea.ValidColumn(s) {
		return nil
	}
	return errors.New("must be a table column")
}

// Reduce applies e to s. Anything that changes which rows are shown drops
// the selected row, so a row index is never carried across views.
func Reduce(s State, e Event) State {
	switch e.Type {
	case EventInit:
		return State{}
	case EventProjectSelected:
		if e.Value != s.Project {
			s = State{Project: e.Value, Genes: s.Genes, Sort: s.Sort, Desc: s.Desc}
		}
	case EventFileSelected:
		if e.Value != s.File {
			s.File = e.Value
			s.resetTable()
		}
	case EventGenesChanged:
		if e.Value != s.Genes {
			s.Genes = e.Value
			s.resetTable()
		}
	case EventSortChanged:
		if e.Value != s.Sort || e.Desc != s.Desc {
			s.Sort, s.Desc = e.Value, e.Desc
			s.resetTable()
		}
	case EventPageChanged:
		s.Page = e.Page
	case EventRowSelected:
		row := *e.Row
		s.Row = &row
		s.ViewID = e.ViewID
	}
	return s
}

func (s *State) resetTable() {
	s.Page = 0
	s.Row = nil
	s.ViewID = ""
}

// View is everything the dashboard displays for a state.
type View struct {
	State    State           `json:"state"`
	Projects []models.Option `json:"projects"`
	Files    []models.Option `json:"files"`
	Terms    *TermsPage      `json:"terms"`
	Charts   *Selection      `json:"charts"`
	Error    string          `json:"error,omitempty"`
}

// Dispatch validates e, reduces it into s and renders the result.
func (p *Pipeline) Dispatch(ctx context.Context, s State, e Event) (*View, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: dispatch: %w: %w", ErrInvalidEvent, err)
	}
	return p.Render(ctx, Reduce(s, e))
}

// Render computes the view for s. When no project or file is chosen, or the
// chosen one has gone away, the first available is used. Discovery and load
// failures are reported in View.Error and leave the selectors usable.
func (p *Pipeline) Render(ctx context.Context, s State) (*View, error) {
	v := &View{
		Projects: []models.Option{},
		Files:    []models.Option{},
		Terms:    &TermsPage{Columns: gsea.Columns, Genes: []string{}, Rows: []gsea.Row{}, PageSize: p.pageSize, Pages: 1},
		Charts:   emptySelection(false),
	}

	projects, err := p.Projects(ctx)
	if err != nil {
		return v.fail(s, err)
	}
	v.Projects = projects
	s.Project = pick(projects, s.Project)
	if s.Project == "" {
		s.File = ""
		v.State = s
		return v, nil
	}

	files, err := p.ResultFiles(ctx, s.Project)
	if err != nil {
		return v.fail(s, err)
	}
	v.Files = files
	if f := pick(files, s.File); f != s.File {
		s.File = f
		s.resetTable()
	}
	if s.File == "" {
		v.State = s
		return v, nil
	}

	view, err := p.View(ctx, s.Project, s.File, s.Query())
	if err != nil {
		return v.fail(s, err)
	}

	v.Terms = paginate(view, s.Page, p.pageSize, p.pageSize)
	s.Page = v.Terms.Page

	if s.Row != nil {
		sel, err := selectRow(view, *s.Row, s.ViewID)
		if err != nil {
			return nil, err
		}
		v.Charts = sel
		if sel.Stale {
			s.Row = nil
		}
	}
	s.ViewID = view.ID
	v.State = s
	return v, nil
}

// fail records a user-facing failure. Cancellation and unexpected errors
// are returned to the caller instead.
func (v *View) fail(s State, err error) (*View, error) {
	switch {
	case errors.Is(err, apperr.ErrDiscovery):
		v.Error = apperr.ErrDiscovery.Error()
	case apperr.IsLoadFailure(err), errors.Is(err, apperr.ErrNotFound), errors.Is(err, gsea.ErrUnknownColumn):
		v.Error = err.Error()
	default:
		return nil, err
	}
	s.Row = nil
	s.ViewID = ""
	v.State = s
	return v, nil
}

// pick keeps current when it is one of opts, otherwise falls back to the
// first option (or "" when there are none).
func pick(opts []models.Option, current string) string {
	if current != "" && slices.ContainsFunc(opts, func(o models.Option) bool { return o.Value == current }) {
		return current
	}
	if len(opts) == 0 {
		return ""
	}
	return opts[0].Value
}
