package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vit0-9/dylink_api/pkg/relay"
	"github.com/vit0-9/dylink_api/pkg/utils"
)

const (
	msgMissingTarget = `missing "url" query parameter`
	msgInvalidTarget = `"url" must be an absolute http(s) URL`
)

// ProxyHandlers streams media through this origin.
type ProxyHandlers struct {
	relay *relay.Relay
}

func NewProxyHandlers(r *relay.Relay) *ProxyHandlers {
	return &ProxyHandlers{relay: r}
}

// ProxyHandler godoc
// @Summary      Relay a media file
// @Description  Fetches the given media URL with the platform's own Referer and streams it back unchanged, with permissive CORS headers. Range requests are forwarded.
// @Tags         Proxy
// @Produce      octet-stream
// @Param        url query string true "Direct media URL"
// @Param        Range header string false "Byte range to fetch"
// @Success      200 {file} binary "Upstream body"
// @Success      206 {file} binary "Partial upstream body"
// @Failure      400 {string} string "url is missing or not an absolute http(s) URL"
// @Failure      500 {string} string "The relay could not reach the upstream"
// @Router       /api/proxy [get]
func (h *ProxyHandlers) ProxyHandler(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.String(http.StatusBadRequest, msgMissingTarget)
		return
	}
	if u, err := url.Parse(target); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.String(http.StatusBadRequest, msgInvalidTarget)
		return
	}

	log := logrus.WithFields(logrus.Fields{"handler": "proxy", "target": target})

	resp, err := h.relay.Open(c.Request.Context(), c.Request.Method, target, c.Request.Header)
	if err != nil {
		var statusErr *utils.HTTPStatusError
		if errors.As(err, &statusErr) {
			log.WithField("status", statusErr.StatusCode).Warn("upstream refused relay request")
			c.String(statusErr.StatusCode, "proxy request failed, upstream status: %d", statusErr.StatusCode)
			return
		}
		log.WithError(err).Error("relay request failed")
		c.String(http.StatusInternalServerError, "proxy error: %v", err)
		return
	}
	defer resp.Body.Close()

	n, err := relay.Forward(c.Writer, resp, c.Request.Method != http.MethodHead)
	if err != nil {
		// Headers are gone already; the caller sees a truncated body.
		log.WithError(err).WithField("bytes", n).Warn("relay stream interrupted")
	}
}

// PreflightHandler answers CORS preflight requests for the relay.
func (h *ProxyHandlers) PreflightHandler(c *gin.Context) {
	relay.SetCORSHeaders(c.Writer.Header())
	c.Status(http.StatusNoContent)
}
