package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics MetricsCollector) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}
}

func registerOperationRoutes(mux *http.ServeMux, handler *Handler, token string) {
	mux.Handle("GET /v1/ops", RequireBearerToken(token, http.HandlerFunc(handler.Operations)))
	mux.Handle("POST /v1/ops/{field}", RequireBearerToken(token, http.HandlerFunc(handler.Dispatch)))
}

// registerAliasRoutes exposes the common operations as REST routes. Path and
// query values override body keys of the same name.
func registerAliasRoutes(mux *http.ServeMux, handler *Handler, token string) {
	route := func(pattern, field string, args func(r *http.Request, body map[string]any)) {
		mux.Handle(pattern, RequireBearerToken(token, handler.alias(field, args)))
	}

	route("POST /v1/games/enrich", OpEnrichGameData, nil)

	route("POST /v1/social-posts/{postID}/process", OpProcessSocialPost, func(r *http.Request, body map[string]any) {
		body["socialPostId"] = r.PathValue("postID")
	})
	route("POST /v1/social-posts/process", OpProcessSocialPostBatch, nil)
	route("POST /v1/social-posts/{postID}/preview-match", OpPreviewSocialPostMatch, func(r *http.Request, body map[string]any) {
		body["socialPostId"] = r.PathValue("postID")
	})
	route("POST /v1/social-posts/preview-extraction", OpPreviewContentExtraction, nil)
	route("GET /v1/social-posts/unlinked", OpGetUnlinkedSocialPosts, func(r *http.Request, body map[string]any) {
		if statuses := queryList(r, "status"); len(statuses) > 0 {
			body["statuses"] = statuses
		}
		if limit, ok := queryInt(r, "limit"); ok {
			body["limit"] = limit
		}
	})
	route("GET /v1/social-posts/stats", OpGetSocialPostMatchingStats, nil)
	route("GET /v1/social-posts/{postID}/reconcile/{gameID}", OpReconcilePostWithGame, func(r *http.Request, body map[string]any) {
		body["socialPostId"] = r.PathValue("postID")
		body["gameId"] = r.PathValue("gameID")
	})

	route("POST /v1/links", OpLinkSocialPostToGame, nil)
	route("DELETE /v1/links/{linkID}", OpUnlinkSocialPostFromGame, func(r *http.Request, body map[string]any) {
		body["linkId"] = r.PathValue("linkID")
	})
	route("POST /v1/links/{linkID}/verify", OpVerifySocialPostLink, func(r *http.Request, body map[string]any) {
		body["linkId"] = r.PathValue("linkID")
	})
	route("POST /v1/links/{linkID}/reject", OpRejectSocialPostLink, func(r *http.Request, body map[string]any) {
		body["linkId"] = r.PathValue("linkID")
	})

	venueQuery := func(r *http.Request, body map[string]any) {
		if venueID := strings.TrimSpace(r.URL.Query().Get("venueId")); venueID != "" {
			body["venueId"] = venueID
		}
	}
	route("GET /v1/recurring-games/stats", OpGetRecurringGameStats, venueQuery)
	route("GET /v1/recurring-games/duplicates", OpFindDuplicateRecurringGames, venueQuery)
	route("GET /v1/recurring-games/compliance", OpGetRecurringComplianceReport, venueQuery)
	route("POST /v1/recurring-games/merge", OpMergeRecurringGames, nil)
	route("POST /v1/recurring-games/gaps", OpDetectRecurringGaps, nil)
	route("POST /v1/recurring-games/{recurringGameID}/missed", OpRecordMissedInstance, func(r *http.Request, body map[string]any) {
		body["recurringGameId"] = r.PathValue("recurringGameID")
	})
}

func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func queryInt(r *http.Request, key string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
