package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oakmart/storefront/internal/directory"
	"github.com/oakmart/storefront/internal/pkg/httputil"
	"github.com/oakmart/storefront/internal/segments"
)

// UsersAPI handles the admin user table endpoints. All filtering runs in
// memory over the cached directory; the handlers never push predicates into
// the database.
type UsersAPI struct {
	directory directory.Lister
	store     *segments.Store
}

// NewUsersAPI creates the users handler group.
func NewUsersAPI(dir directory.Lister, store *segments.Store) *UsersAPI {
	return &UsersAPI{directory: dir, store: store}
}

// RegisterRoutes registers user routes under /api/admin.
func (api *UsersAPI) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", api.ListUsers)
		r.Post("/filter", api.FilterUsers)
	})
}

// ListUsers returns the directory filtered by the ad-hoc query parameters.
// Repeated params OR within a field; across fields the filters AND.
func (api *UsersAPI) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	filters := segments.UserFilters{
		Roles:        q["role"],
		Status:       q["status"],
		SignupSource: q["signup_source"],
		Location:     q.Get("location"),
		Search:       q.Get("q"),
	}

	users, err := api.directory.List(ctx)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	matched := segments.ApplyUserFilters(users, filters)
	httputil.OK(w, map[string]any{
		"users": matched,
		"total": len(users),
		"count": len(matched),
	})
}

// FilterUsersRequest carries either ad-hoc filters or a segment to activate.
// The two are mutually exclusive; a segment_id wins and clears the filters.
type FilterUsersRequest struct {
	Filters   segments.UserFilters `json:"filters"`
	SegmentID *uuid.UUID           `json:"segment_id,omitempty"`
}

// FilterUsers evaluates a filter panel state against the directory.
func (api *UsersAPI) FilterUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FilterUsersRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	state := segments.PanelState{}
	if req.SegmentID != nil {
		state = state.WithSegment(*req.SegmentID)
	} else {
		state = state.WithFilters(req.Filters)
	}

	var active *segments.SavedSegment
	if state.ActiveSegmentID != nil {
		seg, err := api.store.Get(ctx, *state.ActiveSegmentID)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		active = seg
	}

	criteria := state.EffectiveCriteria(func(id uuid.UUID) (segments.FilterCriteria, bool) {
		if active != nil && active.ID == id {
			return active.FilterCriteria, true
		}
		return segments.FilterCriteria{}, false
	})

	users, err := api.directory.List(ctx)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	matched := segments.ApplyFilterCriteria(users, criteria)
	httputil.OK(w, map[string]any{
		"state": state,
		"users": matched,
		"total": len(users),
		"count": len(matched),
	})
}
