package server

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// clientKey derives the rate-limit key for a request. The lookup order is
// load-bearing behind a CDN: the edge proxy header is authoritative, the
// forwarded-for chain's first hop is next, and only direct connections
// fall through to the socket address.
func clientKey(c *gin.Context) string {
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
