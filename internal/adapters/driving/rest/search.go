package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/matrix"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// Matrix error codes.
const (
	errCodeInvalidParam = "M_INVALID_PARAM"
	errCodeNotJSON      = "M_NOT_JSON"
	errCodeNotFound     = "M_NOT_FOUND"
	errCodeUnknown      = "M_UNKNOWN"
)

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, errCodeNotJSON, "request body is not valid JSON")
		return
	}

	query, ok := toQuery(c, &req)
	if !ok {
		return
	}
	query.NextBatch = c.Query("next_batch")

	result, err := s.search.Search(c.Request.Context(), query)
	if err != nil {
		abortWithError(c, err)
		return
	}

	criteria := req.SearchCategories.RoomEvents
	c.JSON(http.StatusOK, searchResponse{
		SearchCategories: responseCategories{
			RoomEvents: toResult(result, criteria.EventContext != nil),
		},
	})
}

// toQuery maps the request onto a search query. It writes the error
// response itself and reports false when the request is unusable.
func toQuery(c *gin.Context, req *searchRequest) (domain.SearchQuery, bool) {
	criteria := req.SearchCategories.RoomEvents
	if criteria == nil {
		abort(c, http.StatusBadRequest, errCodeInvalidParam, "only the room_events category is supported")
		return domain.SearchQuery{}, false
	}

	query := domain.SearchQuery{Term: criteria.SearchTerm}

	switch criteria.OrderBy {
	case "", orderRank:
	case orderRecent:
		query.OrderByRecent = true
	default:
		abort(c, http.StatusBadRequest, errCodeInvalidParam, "order_by must be recent or rank")
		return domain.SearchQuery{}, false
	}

	if f := criteria.Filter; f != nil {
		if len(f.Rooms) > 1 {
			abort(c, http.StatusBadRequest, errCodeInvalidParam, "filter.rooms supports at most one room")
			return domain.SearchQuery{}, false
		}
		if len(f.Rooms) == 1 {
			query.RoomID = f.Rooms[0]
		}
		query.Limit = f.Limit
	}

	if ec := criteria.EventContext; ec != nil {
		query.BeforeLimit = defaultContextLimit
		if ec.BeforeLimit != nil {
			query.BeforeLimit = *ec.BeforeLimit
		}
		query.AfterLimit = defaultContextLimit
		if ec.AfterLimit != nil {
			query.AfterLimit = *ec.AfterLimit
		}
		query.IncludeProfile = ec.IncludeProfile
	}

	return query, true
}

func toResult(result *domain.SearchResult, withContext bool) roomEventsResult {
	out := roomEventsResult{
		Count:      result.Count,
		Highlights: result.Highlights,
		NextBatch:  result.NextBatch,
		Results:    make([]searchResult, 0, len(result.Items)),
	}
	if out.Highlights == nil {
		out.Highlights = []string{}
	}

	for _, item := range result.Items {
		r := searchResult{
			Rank:   float64(item.Rank),
			Result: matrix.FromEvent(item.Event),
		}
		if withContext && item.Context != nil {
			r.Context = &eventContextResult{
				EventsBefore: matrix.FromEvents(item.Context.Before),
				EventsAfter:  matrix.FromEvents(item.Context.After),
			}
			if p := item.Profile; p != nil {
				r.Context.ProfileInfo = map[string]profileInfo{
					item.Event.Sender: {DisplayName: p.DisplayName, AvatarURL: p.AvatarURL},
				}
			}
		}
		out.Results = append(out.Results, r)
	}
	return out
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidCursor):
		abort(c, http.StatusBadRequest, errCodeInvalidParam, err.Error())
	case errors.Is(err, domain.ErrRoomNotFound):
		abort(c, http.StatusNotFound, errCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		abort(c, http.StatusServiceUnavailable, errCodeUnknown, err.Error())
	default:
		log.Error("search failed: %v", err)
		abort(c, http.StatusInternalServerError, errCodeUnknown, "internal error")
	}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{ErrCode: code, Error: msg})
}
