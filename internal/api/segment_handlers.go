package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oakmart/storefront/internal/directory"
	"github.com/oakmart/storefront/internal/pkg/httputil"
	"github.com/oakmart/storefront/internal/segments"
)

// SegmentsAPI handles saved segment endpoints.
type SegmentsAPI struct {
	store     *segments.Store
	directory directory.Lister
}

// NewSegmentsAPI creates the segments handler group.
func NewSegmentsAPI(store *segments.Store, dir directory.Lister) *SegmentsAPI {
	return &SegmentsAPI{store: store, directory: dir}
}

// RegisterRoutes registers segment routes under /api/admin.
func (api *SegmentsAPI) RegisterRoutes(r chi.Router) {
	r.Route("/segments", func(r chi.Router) {
		r.Get("/", api.ListSegments)
		r.Post("/", api.CreateSegment)

		r.Route("/{segmentID}", func(r chi.Router) {
			r.Get("/", api.GetSegment)
			r.Post("/activate", api.ActivateSegment)
		})
	})

	r.Get("/operators", api.ListOperators)
}

// ListSegments returns all saved segments, newest first.
func (api *SegmentsAPI) ListSegments(w http.ResponseWriter, r *http.Request) {
	segs, err := api.store.List(r.Context())
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	if segs == nil {
		segs = []*segments.SavedSegment{}
	}
	httputil.OK(w, segs)
}

// CreateSegment persists the current filter criteria under a name.
func (api *SegmentsAPI) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var in segments.CreateSegmentInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	seg, err := api.store.Create(r.Context(), in)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.Created(w, seg)
}

// GetSegment returns a single segment by ID.
func (api *SegmentsAPI) GetSegment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "segmentID"))
	if err != nil {
		httputil.BadRequest(w, "invalid segment ID")
		return
	}

	seg, err := api.store.Get(r.Context(), id)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.OK(w, seg)
}

// ActivateSegment loads a segment's criteria and returns the matching users.
// Activation supersedes any ad-hoc filters the panel was holding.
func (api *SegmentsAPI) ActivateSegment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "segmentID"))
	if err != nil {
		httputil.BadRequest(w, "invalid segment ID")
		return
	}

	seg, err := api.store.Get(ctx, id)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	users, err := api.directory.List(ctx)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	matched := segments.ApplyFilterCriteria(users, seg.FilterCriteria)
	httputil.OK(w, map[string]any{
		"segment": seg,
		"users":   matched,
		"total":   len(users),
		"count":   len(matched),
	})
}

// ListOperators returns operator metadata for the filter panel UI.
func (api *SegmentsAPI) ListOperators(w http.ResponseWriter, _ *http.Request) {
	httputil.OK(w, segments.GetOperatorMetadata())
}
