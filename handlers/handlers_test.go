package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vit0-9/dylink_api/pkg/relay"
	"github.com/vit0-9/dylink_api/pkg/resolver"
)

const testProxyPath = "/api/proxy"

var videoBytes = bytes.Repeat([]byte("0123456789abcdef"), 4096)

// upstream fakes the metadata service, the redirecting link host and the CDN.
type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32

	linkStatus  int
	videoStatus int
	referer     atomic.Value
}

func newUpstream() *upstream {
	u := &upstream{linkStatus: http.StatusOK, videoStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		if r.URL.Query().Has("data") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"desc":"x","nickname":"y"}`))
			return
		}
		w.WriteHeader(u.linkStatus)
		_, _ = w.Write([]byte(u.srv.URL + "/abc?a=1&b=2"))
	})
	mux.HandleFunc("/abc", func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		http.Redirect(w, r, "/video.mp4", http.StatusFound)
	})
	mux.HandleFunc("/video.mp4", func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		u.referer.Store(r.Header.Get("Referer"))
		if u.videoStatus != http.StatusOK {
			w.WriteHeader(u.videoStatus)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		http.ServeContent(w, r, "video.mp4", fixedModTime, bytes.NewReader(videoBytes))
	})

	u.srv = httptest.NewServer(mux)
	return u
}

func (u *upstream) router() *gin.Engine {
	base, _ := url.Parse(u.srv.URL + "/")
	parse := NewParseHandlers(resolver.New(base, u.srv.Client()), testProxyPath)
	proxy := NewProxyHandlers(relay.New(u.srv.Client(), "https://www.douyin.com/", "Mozilla/5.0"))

	r := gin.New()
	r.GET("/api/parse", parse.ParseHandler)
	r.GET("/api/resolve", parse.ResolveHandler)
	r.GET(testProxyPath, proxy.ProxyHandler)
	r.HEAD(testProxyPath, proxy.ProxyHandler)
	r.OPTIONS(testProxyPath, proxy.PreflightHandler)
	return r
}

func serve(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func init() {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
}

func TestParseHandler(t *testing.T) {
	Convey("GET /api/parse", t, func() {
		u := newUpstream()
		defer u.srv.Close()
		r := u.router()

		Convey("Should reject a missing url without calling upstream", func() {
			w := serve(r, http.MethodGet, "/api/parse?data", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldEqual, `{"error":"URL parameter is required."}`)
			So(u.calls.Load(), ShouldEqual, int32(0))
		})

		Convey("Should return upstream metadata verbatim in data mode", func() {
			w := serve(r, http.MethodGet, "/api/parse?data&url="+url.QueryEscape("https://v.douyin.com/abc/"), nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"desc":"x","nickname":"y"}`)
			So(u.calls.Load(), ShouldEqual, int32(1))
		})

		Convey("Should return both URLs in URL mode without escaping ampersands", func() {
			w := serve(r, http.MethodGet, "/api/parse?url="+url.QueryEscape("https://v.douyin.com/abc/"), nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual,
				`{"originalUrl":"`+u.srv.URL+`/abc?a=1&b=2","finalUrl":"`+u.srv.URL+`/video.mp4"}`)
			So(u.referer.Load(), ShouldEqual, "")
		})

		Convey("Should answer 502 without following when the first hop fails", func() {
			u.linkStatus = http.StatusNotFound
			w := serve(r, http.MethodGet, "/api/parse?url=https%3A%2F%2Fv.douyin.com%2Fabc", nil)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(w.Body.String(), ShouldEqual, `{"error":"Failed to process request."}`)
			So(u.calls.Load(), ShouldEqual, int32(1))
		})

		Convey("Should answer 502 when the redirect target fails", func() {
			u.videoStatus = http.StatusForbidden
			w := serve(r, http.MethodGet, "/api/parse?url=https%3A%2F%2Fv.douyin.com%2Fabc", nil)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
		})

		Convey("Should give the same response shape on repeated requests", func() {
			first := serve(r, http.MethodGet, "/api/parse?url=x", nil)
			second := serve(r, http.MethodGet, "/api/parse?url=x", nil)
			So(second.Code, ShouldEqual, first.Code)
			So(second.Body.String(), ShouldEqual, first.Body.String())
		})
	})
}

func TestResolveHandler(t *testing.T) {
	Convey("GET /api/resolve", t, func() {
		u := newUpstream()
		defer u.srv.Close()
		r := u.router()

		Convey("Should combine both modes and add a relay path", func() {
			w := serve(r, http.MethodGet, "/api/resolve?url=https%3A%2F%2Fv.douyin.com%2Fabc", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["originalUrl"], ShouldEqual, u.srv.URL+"/abc?a=1&b=2")
			So(body["finalUrl"], ShouldEqual, u.srv.URL+"/video.mp4")
			So(body["proxyUrl"], ShouldEqual, testProxyPath+"?url="+url.QueryEscape(u.srv.URL+"/abc?a=1&b=2"))
			So(body["metadata"], ShouldResemble, map[string]any{"desc": "x", "nickname": "y"})
		})

		Convey("Should reject a missing url", func() {
			w := serve(r, http.MethodGet, "/api/resolve", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(u.calls.Load(), ShouldEqual, int32(0))
		})
	})
}

func TestProxyHandler(t *testing.T) {
	Convey("GET /api/proxy", t, func() {
		u := newUpstream()
		defer u.srv.Close()
		r := u.router()
		target := "/api/proxy?url=" + url.QueryEscape(u.srv.URL+"/video.mp4")

		Convey("Should reject a missing url without calling upstream", func() {
			w := serve(r, http.MethodGet, "/api/proxy", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/plain")
			So(w.Body.String(), ShouldNotBeEmpty)
			So(u.calls.Load(), ShouldEqual, int32(0))
		})

		Convey("Should reject a relative url", func() {
			w := serve(r, http.MethodGet, "/api/proxy?url=/etc/passwd", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(u.calls.Load(), ShouldEqual, int32(0))
		})

		Convey("Should stream the body byte for byte with CORS headers", func() {
			w := serve(r, http.MethodGet, target, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(bytes.Equal(w.Body.Bytes(), videoBytes), ShouldBeTrue)
			So(w.Header().Get("Content-Type"), ShouldEqual, "video/mp4")
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			So(w.Header().Get("Access-Control-Allow-Methods"), ShouldEqual, "GET, HEAD, OPTIONS")
			So(w.Header().Get("Access-Control-Allow-Headers"), ShouldEqual, "Range")
			So(u.referer.Load(), ShouldEqual, "https://www.douyin.com/")
		})

		Convey("Should pass Range through for seeking", func() {
			w := serve(r, http.MethodGet, target, http.Header{"Range": {"bytes=16-31"}})
			So(w.Code, ShouldEqual, http.StatusPartialContent)
			So(w.Body.String(), ShouldEqual, "0123456789abcdef")
			So(w.Header().Get("Content-Range"), ShouldEqual, "bytes 16-31/65536")
		})

		Convey("Should forward an upstream 403 as plain text", func() {
			u.videoStatus = http.StatusForbidden
			w := serve(r, http.MethodGet, target, nil)
			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/plain")
			So(w.Body.String(), ShouldContainSubstring, "403")
			So(json.Valid(w.Body.Bytes()), ShouldBeFalse)
		})

		Convey("Should answer 500 when the upstream is unreachable", func() {
			dead := httptest.NewServer(http.NotFoundHandler())
			deadURL := dead.URL
			dead.Close()

			w := serve(r, http.MethodGet, "/api/proxy?url="+url.QueryEscape(deadURL+"/video.mp4"), nil)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldStartWith, "proxy error:")
		})

		Convey("Should relay HEAD without a body", func() {
			w := serve(r, http.MethodHead, target, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.Len(), ShouldEqual, 0)
			So(w.Header().Get("Content-Length"), ShouldEqual, "65536")
		})

		Convey("Should answer preflight with CORS headers only", func() {
			w := serve(r, http.MethodOptions, "/api/proxy", nil)
			So(w.Code, ShouldEqual, http.StatusNoContent)
			So(w.Header().Get("Access-Control-Allow-Headers"), ShouldEqual, "Range")
			So(u.calls.Load(), ShouldEqual, int32(0))
		})
	})
}

func TestProxyHandlerCallerDisconnect(t *testing.T) {
	Convey("GET /api/proxy with a caller that disconnects", t, func() {
		streaming := make(chan struct{})
		upstreamDone := make(chan struct{})

		cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("first chunk"))
			w.(http.Flusher).Flush()
			close(streaming)

			<-r.Context().Done()
			close(upstreamDone)
		}))
		defer cdn.Close()

		proxy := NewProxyHandlers(relay.New(cdn.Client(), "https://www.douyin.com/", "Mozilla/5.0"))
		router := gin.New()
		router.GET(testProxyPath, proxy.ProxyHandler)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		req := httptest.NewRequest(http.MethodGet, testProxyPath+"?url="+url.QueryEscape(cdn.URL+"/video.mp4"), nil).WithContext(ctx)

		served := make(chan struct{})
		go func() {
			defer close(served)
			router.ServeHTTP(httptest.NewRecorder(), req)
		}()

		<-streaming
		cancel()

		So(closedWithin(upstreamDone, 5*time.Second), ShouldBeTrue)
		So(closedWithin(served, 5*time.Second), ShouldBeTrue)
	})
}

func closedWithin(ch <-chan struct{}, d time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(d):
		return false
	}
}

var fixedModTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
