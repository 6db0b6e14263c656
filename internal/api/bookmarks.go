package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"youthpolicy/internal/catalog"
	"youthpolicy/internal/types"
)

// identityHeader carries the authenticated user id, asserted by the
// gateway in front of this service. The API trusts it but rejects requests
// that arrive without it.
const identityHeader = "X-User-ID"

// userID extracts the caller identity or returns an auth error.
func userID(r *http.Request) (string, error) {
	id := r.Header.Get(identityHeader)
	if id == "" {
		return "", types.NewAppError(types.ErrCodeAuthIdentityMissing, "missing user identity", nil)
	}
	return id, nil
}

// createBookmarkRequest is the POST body for bookmark creation.
// NotifyBeforeDays is optional; zero falls back to the configured default.
type createBookmarkRequest struct {
	PolicyID         string `json:"policy_id"`
	NotifyBeforeDays int    `json:"notify_before_days"`
}

// handleCreateBookmark serves POST /v1/bookmarks.
func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, s.logger, types.NewAppError(
			types.ErrCodeValidationInvalidParam, "invalid request body", err))
		return
	}
	if req.PolicyID == "" {
		respondError(ctx, w, s.logger, types.NewAppError(
			types.ErrCodeValidationMissingField, "policy_id is required", nil))
		return
	}
	if req.NotifyBeforeDays < 0 || req.NotifyBeforeDays > s.maxLeadDays {
		respondError(ctx, w, s.logger, types.NewAppError(
			types.ErrCodeValidationInvalidParam, "notify_before_days out of range", nil))
		return
	}
	if req.NotifyBeforeDays == 0 {
		req.NotifyBeforeDays = s.defaultLeadDays
	}

	// Bookmarking a policy that does not exist is a client error, not an FK
	// violation surfacing as a 500.
	if _, err := s.policies.GetByID(ctx, req.PolicyID); err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	b := &types.Bookmark{
		UserID:           uid,
		PolicyID:         req.PolicyID,
		NotifyBeforeDays: req.NotifyBeforeDays,
	}
	if err := s.bookmarks.Create(ctx, b); err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, b)
}

// handleDeleteBookmark serves DELETE /v1/bookmarks/{policyID}.
func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	policyID := chi.URLParam(r, "policyID")
	if err := s.bookmarks.Delete(ctx, uid, policyID); err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// bookmarkListResponse is the bookmark list envelope.
type bookmarkListResponse struct {
	Bookmarks []types.BookmarkedPolicy `json:"bookmarks"`
}

// handleListBookmarks serves GET /v1/bookmarks.
func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	items, err := s.bookmarks.ListByUser(ctx, uid)
	if err != nil {
		respondError(ctx, w, s.logger, err)
		return
	}

	now := s.clock.Now()
	for i := range items {
		catalog.Annotate(&items[i].Policy, now)
	}
	if items == nil {
		items = []types.BookmarkedPolicy{}
	}

	respondJSON(w, http.StatusOK, bookmarkListResponse{Bookmarks: items})
}
