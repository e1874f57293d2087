package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/auth"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/middleware"
)

const refreshTokenCookieName = "refresh_token"

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// getOptionalQueryParam returns nil when the parameter is absent or blank.
func getOptionalQueryParam(r *http.Request, key string) *string {
	val := strings.TrimSpace(r.URL.Query().Get(key))
	if val == "" {
		return nil
	}
	return &val
}

func sessionFromRequest(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		UserAgent: r.UserAgent(),
		IPAddress: middleware.ClientIP(r),
	}
}
