package sponsorship

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sponsorship/backend/internal/domain/shared"
	"github.com/sponsorship/backend/internal/domain/sponsorship"
)

type memChildRepo struct {
	children map[uuid.UUID]*sponsorship.Child
	saved    int
}

func newMemChildRepo() *memChildRepo {
	return &memChildRepo{children: make(map[uuid.UUID]*sponsorship.Child)}
}

func (r *memChildRepo) add(c *sponsorship.Child) { r.children[c.ID] = c }

func (r *memChildRepo) FindByID(_ context.Context, id uuid.UUID) (*sponsorship.Child, error) {
	if c, ok := r.children[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memChildRepo) FindByCode(_ context.Context, code string) (*sponsorship.Child, error) {
	for _, c := range r.children {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memChildRepo) Save(_ context.Context, c *sponsorship.Child) error {
	r.children[c.ID] = c
	r.saved++
	return nil
}

type memCaseStudyRepo struct {
	studies []*sponsorship.CaseStudy
}

func (r *memCaseStudyRepo) Create(_ context.Context, cs *sponsorship.CaseStudy) error {
	r.studies = append(r.studies, cs)
	return nil
}

func (r *memCaseStudyRepo) FindByChild(_ context.Context, childID uuid.UUID) ([]*sponsorship.CaseStudy, error) {
	var out []*sponsorship.CaseStudy
	for _, cs := range r.studies {
		if cs.ChildID == childID {
			out = append(out, cs)
		}
	}
	return out, nil
}

func (r *memCaseStudyRepo) FindLatestByChild(_ context.Context, childID uuid.UUID) (*sponsorship.CaseStudy, error) {
	var latest *sponsorship.CaseStudy
	for _, cs := range r.studies {
		if cs.ChildID == childID {
			latest = cs
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	return latest, nil
}

type memValueRepo struct {
	values  []*sponsorship.PropertyValue
	created int
}

func (r *memValueRepo) FindByCategoryAndValue(_ context.Context, category sponsorship.PropertyCategory, valueEN string) (*sponsorship.PropertyValue, error) {
	for _, v := range r.values {
		if v.Category == category && v.ValueEN == strings.ToLower(valueEN) {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memValueRepo) Create(_ context.Context, value *sponsorship.PropertyValue) error {
	r.values = append(r.values, value)
	r.created++
	return nil
}

type fakeFetcher struct {
	doc      *CaseStudyDocument
	err      error
	lastCode string
}

func (f *fakeFetcher) Fetch(_ context.Context, childCode string) (*CaseStudyDocument, error) {
	f.lastCode = childCode
	return f.doc, f.err
}
