package middleware

import (
	"net"
	"net/http"
	"strings"

	"akreditasi-jurnal/internal/models"
)

// Actor describes the caller of a request for the audit trail. Anonymous
// requests get a zero user id.
func Actor(r *http.Request) models.Actor {
	userID, _ := GetUserID(r)
	return models.Actor{
		UserID:    userID,
		IPAddress: getIP(r),
		UserAgent: r.UserAgent(),
	}
}

// getIP gets the client IP address from the request
func getIP(r *http.Request) string {
	// Check X-Forwarded-For header first; the left-most entry is the client
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr without the port
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
