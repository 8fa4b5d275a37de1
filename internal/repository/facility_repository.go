package repository

import (
    "fmt"
    "strings"

    "github.com/gosimple/slug"

    "github.com/iliyamo/picklepass/internal/model"
)

// defaultFacilities is the reference data every deployment starts with.
var defaultFacilities = []model.Facility{
    {ID: "fac_cranky", Slug: "the-cranky-pickle", Name: "The Cranky Pickle", City: "Austin", State: "TX", CourtsLabel: "Courts 1–8"},
    {ID: "fac_ranch", Slug: "austin-pickle-ranch", Name: "Austin Pickle Ranch", City: "Austin", State: "TX", CourtsLabel: "Courts 1–16"},
    {ID: "fac_eastside", Slug: "eastside-pickleball-club", Name: "Eastside Pickleball Club", City: "Austin", State: "TX", CourtsLabel: "Courts 1–10"},
}

// LegacyFacilitySlug is the facility assumed by booking routes that do not
// name one.
const LegacyFacilitySlug = "the-cranky-pickle"

// FacilityRepo is the read-only facility directory.
type FacilityRepo struct {
    list   []model.Facility
    bySlug map[string]model.Facility
}

// NewFacilityRepo returns the directory over the built-in facilities.
func NewFacilityRepo() *FacilityRepo {
    r, err := NewFacilityRepoFrom(defaultFacilities)
    if err != nil {
        panic(err)
    }
    return r
}

// NewFacilityRepoFrom builds a directory from facilities, rejecting slugs
// that are not URL-safe or not unique.
func NewFacilityRepoFrom(facilities []model.Facility) (*FacilityRepo, error) {
    r := &FacilityRepo{
        list:   make([]model.Facility, 0, len(facilities)),
        bySlug: make(map[string]model.Facility, len(facilities)),
    }
    for _, f := range facilities {
        if !slug.IsSlug(f.Slug) {
            return nil, fmt.Errorf("facility %s: invalid slug %q", f.ID, f.Slug)
        }
        if _, dup := r.bySlug[f.Slug]; dup {
            return nil, fmt.Errorf("facility %s: duplicate slug %q", f.ID, f.Slug)
        }
        r.bySlug[f.Slug] = f
        r.list = append(r.list, f)
    }
    return r, nil
}

// List returns every facility in directory order.
func (r *FacilityRepo) List() []model.Facility {
    out := make([]model.Facility, len(r.list))
    copy(out, r.list)
    return out
}

// FindBySlug returns the facility with slug or ErrFacilityNotFound.
func (r *FacilityRepo) FindBySlug(s string) (model.Facility, error) {
    f, ok := r.bySlug[s]
    if !ok {
        return model.Facility{}, ErrFacilityNotFound
    }
    return f, nil
}

// Search returns the facilities whose name, slug, city or state contain q,
// case-insensitively.  A blank query matches everything.
func (r *FacilityRepo) Search(q string) []model.Facility {
    q = strings.ToLower(strings.TrimSpace(q))
    if q == "" {
        return r.List()
    }
    out := []model.Facility{}
    for _, f := range r.list {
        hay := strings.ToLower(f.Name + " " + f.Slug + " " + f.City + " " + f.State)
        if strings.Contains(hay, q) {
            out = append(out, f)
        }
    }
    return out
}
