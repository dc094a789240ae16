package utils

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

const fallbackClientIP = "127.0.0.1"

// proxyHeaders are consulted in order; X-Forwarded-For lists the client first
var proxyHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// ExtractClientIP returns the caller address recorded in request logs.
// Proxy headers win over the socket address when they hold a parseable IP.
func ExtractClientIP(c *gin.Context) string {
	for _, header := range proxyHeaders {
		value := c.GetHeader(header)
		if value == "" {
			continue
		}
		first, _, _ := strings.Cut(value, ",")
		if addr, ok := parseIP(first); ok {
			return addr
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	if addr, ok := parseIP(host); ok {
		return addr
	}
	return fallbackClientIP
}

func parseIP(raw string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
