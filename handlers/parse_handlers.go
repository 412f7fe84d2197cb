package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vit0-9/dylink_api/models"
	"github.com/vit0-9/dylink_api/pkg/resolver"
)

// Resolution modes, as logged.
const (
	modeData     = "data"
	modeURL      = "url"
	modeCombined = "combined"
)

// ParseHandlers resolves share links through the upstream metadata service.
type ParseHandlers struct {
	resolver  *resolver.Resolver
	proxyPath string
}

// NewParseHandlers creates the handlers. proxyPath is the relay route used to
// build playable links in combined responses.
func NewParseHandlers(r *resolver.Resolver, proxyPath string) *ParseHandlers {
	return &ParseHandlers{resolver: r, proxyPath: proxyPath}
}

// ParseHandler godoc
// @Summary      Parse a share link
// @Description  With the 'data' flag, returns the upstream video metadata verbatim. Without it, returns the playable link from the upstream service and the URL it redirects to.
// @Tags         Parse
// @Produce      json
// @Param        url query string true "Share link, or text containing one"
// @Param        data query string false "Presence selects metadata mode; the value is ignored"
// @Success      200 {object} models.Resolution "URL mode result"
// @Failure      400 {object} models.ErrorResponse "url is missing"
// @Failure      502 {object} models.ErrorResponse "An upstream call failed"
// @Router       /api/parse [get]
func (h *ParseHandlers) ParseHandler(c *gin.Context) {
	shareRef := c.Query("url")
	if shareRef == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: models.ErrMsgURLRequired})
		return
	}

	if _, wantData := c.GetQuery("data"); wantData {
		meta, err := h.resolver.FetchMetadata(c.Request.Context(), shareRef)
		if err != nil {
			h.fail(c, modeData, err)
			return
		}
		c.PureJSON(http.StatusOK, meta)
		return
	}

	res, err := h.resolver.ResolveURL(c.Request.Context(), shareRef)
	if err != nil {
		h.fail(c, modeURL, err)
		return
	}
	c.PureJSON(http.StatusOK, res)
}

// ResolveHandler godoc
// @Summary      Resolve a share link in one call
// @Description  Runs metadata mode and URL mode concurrently and returns both results, plus a relay path for browser playback.
// @Tags         Parse
// @Produce      json
// @Param        url query string true "Share link, or text containing one"
// @Success      200 {object} models.ResolveResponse
// @Failure      400 {object} models.ErrorResponse "url is missing"
// @Failure      502 {object} models.ErrorResponse "An upstream call failed"
// @Router       /api/resolve [get]
func (h *ParseHandlers) ResolveHandler(c *gin.Context) {
	shareRef := c.Query("url")
	if shareRef == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: models.ErrMsgURLRequired})
		return
	}

	res, meta, err := h.resolver.Resolve(c.Request.Context(), shareRef)
	if err != nil {
		h.fail(c, modeCombined, err)
		return
	}

	c.PureJSON(http.StatusOK, models.ResolveResponse{
		Resolution: *res,
		ProxyURL:   h.proxyPath + "?url=" + url.QueryEscape(res.OriginalURL),
		Metadata:   meta,
	})
}

// fail logs err with the failing hop and answers with the generic 502 payload.
func (h *ParseHandlers) fail(c *gin.Context, mode string, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"handler": "parse",
		"mode":    mode,
	})

	var upErr *resolver.UpstreamError
	if errors.As(err, &upErr) {
		entry = entry.WithField("stage", upErr.Stage)
		if upErr.StatusCode != 0 {
			entry = entry.WithField("upstream_status", upErr.StatusCode)
		}
	}
	entry.WithError(err).Error("share link resolution failed")

	c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: models.ErrMsgProcessingFailed})
}
