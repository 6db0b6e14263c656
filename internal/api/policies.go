package api

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"youthpolicy/internal/catalog"
	"youthpolicy/internal/db"
	"youthpolicy/internal/types"
)

// policyListResponse is the list endpoint envelope.
type policyListResponse struct {
	Policies []*types.Policy `json:"policies"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

// handleListPolicies serves GET /v1/policies with optional category,
// region, and status filters. Category and region filter in SQL; status is
// derived from the clock at read time, so it filters after annotation.
func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	category := q.Get("category")
	if category != "" && !slices.Contains(types.Categories, types.Category(category)) {
		respondError(ctx, w, s.logger, types.NewAppError(
			types.ErrCodeValidationInvalidParam, "unknown category", nil))
		return
	}
	region := q.Get("region")
	if region != "" && !slices.Contains(types.Regions, types.Region(region)) {
		respondError(ctx, w, s.logger, types.NewAppError(
			types.ErrCodeValidationInvalidParam, "unknown region", nil))
		return
	}

	var status types.PolicyStatus
	if v := q.Get("status"); v != "" {
		status = types.PolicyStatus(v)
		switch status {
		case types.StatusOpen, types.StatusUpcoming, types.StatusClosingSoon, types.StatusClosed:
		default:
			respondError(ctx, w, s.logger, types.NewAppError(
				types.ErrCodeValidationInvalidParam, "unknown status", nil))
			return
		}
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	limit = db.NormalizeLimit(limit)
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	policies, err := s.policies.List(ctx, db.ListPoliciesParams{
		Category: category,
		Region:   region,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	now := s.clock.Now()
	annotated := make([]*types.Policy, 0, len(policies))
	for _, p := range policies {
		catalog.Annotate(p, now)
		if status != "" && p.Status != status {
			continue
		}
		annotated = append(annotated, p)
	}

	respondJSON(w, http.StatusOK, policyListResponse{
		Policies: annotated,
		Limit:    limit,
		Offset:   offset,
	})
}

// handleGetPolicy serves GET /v1/policies/{policyID}.
func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	policyID := chi.URLParam(r, "policyID")

	p, err := s.policies.GetByID(ctx, policyID)
	if err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	catalog.Annotate(p, s.clock.Now())
	respondJSON(w, http.StatusOK, p)
}
