package pkg

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/domain"
)

// htmx request and response headers.
const (
	HeaderHXRequest  = "HX-Request"
	HeaderHXRedirect = "HX-Redirect"
	HeaderHXTrigger  = "HX-Trigger"
	HeaderHXReswap   = "HX-Reswap"

	// AlertsEvent is the client event that renders a batch of alerts.
	AlertsEvent = "showAlerts"
)

// AlertPayload is the client-side shape of one alert.
type AlertPayload struct {
	Type    domain.AlertType `json:"type"`
	Message string           `json:"message"`
	Timeout int64            `json:"timeout"`
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader(HeaderHXRequest) == "true"
}

// Redirect navigates the browser to location: htmx requests get HX-Redirect,
// plain requests a 303.
func Redirect(c *gin.Context, location string) {
	if IsHTMX(c) {
		c.Header(HeaderHXRedirect, location)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// TriggerAlerts sets the HX-Trigger header that shows alerts on the client.
// It is a no-op for an empty batch.
func TriggerAlerts(c *gin.Context, alerts []domain.Alert) {
	if len(alerts) == 0 {
		return
	}
	payload := make([]AlertPayload, 0, len(alerts))
	for _, a := range alerts {
		payload = append(payload, AlertPayload{Type: a.Type, Message: a.Message, Timeout: a.TimeoutMillis()})
	}
	trigger, err := json.Marshal(map[string]any{AlertsEvent: payload})
	if err != nil {
		return
	}
	c.Header(HeaderHXTrigger, asciiJSON(trigger))
}

// asciiJSON escapes non-ASCII characters as \uXXXX. Browsers decode header
// values as Latin-1, so raw UTF-8 would reach the client garbled.
func asciiJSON(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, r := range string(b) {
		switch {
		case r < utf8.RuneSelf:
			sb.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", r1, r2)
		default:
			fmt.Fprintf(&sb, "\\u%04x", r)
		}
	}
	return sb.String()
}

// RespondAlerts answers an htmx request with alerts only: the target is left
// untouched and the alerts are shown by the client.
func RespondAlerts(c *gin.Context, status int, alerts []domain.Alert) {
	c.Header(HeaderHXReswap, "none")
	TriggerAlerts(c, alerts)
	c.Status(status)
}
