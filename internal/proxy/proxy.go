package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/logger"
	"github.com/baechuer/real-time-ressys/services/admin-console/middleware"
	"github.com/go-chi/render"
)

type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// New creates a reverse proxy onto the backend base URL.
// backendURL: "http://backend:8080/api"
// stripPrefix: "/api"
// A request for /api/users is forwarded to http://backend:8080/api/users.
func New(backendURL, stripPrefix string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, err
	}
	upstreamPrefix := strings.TrimSuffix(target.Path, "/")
	host := &url.URL{Scheme: target.Scheme, Host: target.Host}

	proxy := httputil.NewSingleHostReverseProxy(host)
	proxy.Transport = &middleware.TracingTransport{}
	originalDirector := proxy.Director

	proxy.Director = func(req *http.Request) {
		originalDirector(req)

		req.Host = target.Host

		// /api/users -> <base path>/users
		if strings.HasPrefix(req.URL.Path, stripPrefix) {
			req.URL.Path = upstreamPrefix + strings.TrimPrefix(req.URL.Path, stripPrefix)
			req.URL.RawPath = ""
		}

		if reqID := middleware.GetRequestID(req.Context()); reqID != "" {
			req.Header.Set(middleware.HeaderXRequestID, reqID)
		}
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		reqID := middleware.GetRequestID(r.Context())

		logger.Ctx(r.Context()).Error().
			Err(err).
			Str("target", backendURL).
			Str("path", r.URL.Path).
			Msg("upstream_proxy_error")

		var body errorBody
		body.Error.Code = "upstream_unavailable"
		body.Error.Message = "backend unreachable"
		body.Error.RequestID = reqID

		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, body)
	}

	return proxy, nil
}
