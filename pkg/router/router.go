package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/cors"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can enrich the context; a
// returned error stops the chain and becomes the response.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been decided, even on error.
type CloserFunc func(ctx context.Context)

type route struct {
	handler http.HandlerFunc
}

type Router struct {
	ctx context.Context

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc

	// Shared by all branches of the same root router.
	routes    map[string]map[string]route
	staticDir string
}

func New(ctx context.Context) *Router {
	return &Router{
		ctx:    ctx,
		routes: make(map[string]map[string]route),
	}
}

// Branch derives a router sharing the route table but with an independent
// middleware chain copied from the current one.
func (r *Router) Branch() *Router {
	return &Router{
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]MiddlewareFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
		routes:  r.routes,
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Static(dir string) {
	r.staticDir = dir
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.add(http.MethodGet, pattern, wrap(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.add(http.MethodPost, pattern, wrap(r, http.MethodPost, handler))
}

func (r *Router) add(method, pattern string, handler http.HandlerFunc) {
	if r.routes[pattern] == nil {
		r.routes[pattern] = make(map[string]route)
	}
	r.routes[pattern][method] = route{handler: handler}
}

func (r *Router) Handler() http.Handler {
	cfg := xcontext.Configs(r.ctx).ApiServer
	mux := http.NewServeMux()
	for pattern, methods := range r.routes {
		methods := methods
		mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
			if rt, ok := methods[req.Method]; ok {
				rt.handler(w, req)
				return
			}
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		})
	}

	if r.staticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(r.staticDir))))
	}

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)
}

func wrap[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := r.ctx
		ctx = xcontext.WithHTTPRequest(ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)
		ctx = xcontext.WithStartTime(ctx, time.Now())
		ctx = xcontext.WithError(ctx)
		ctx = xcontext.WithResponse(ctx)

		func() {
			for _, m := range r.befores {
				next, err := m(ctx)
				if err != nil {
					xcontext.SetError(ctx, err)
					return
				}
				ctx = next
			}

			parsedReq, err := parseRequest[Request](ctx, method)
			if err != nil {
				xcontext.SetError(ctx, err)
				return
			}

			resp, err := handler(ctx, parsedReq)
			if err != nil {
				xcontext.SetError(ctx, err)
				return
			}
			xcontext.SetResponse(ctx, resp)

			for _, m := range r.afters {
				next, err := m(ctx)
				if err != nil {
					xcontext.SetError(ctx, err)
					return
				}
				ctx = next
			}
		}()

		writeResponse(ctx)
		for _, closer := range r.closers {
			closer(ctx)
		}
	}
}

func parseRequest[Request any](ctx context.Context, method string) (*Request, error) {
	var req Request
	httpReq := xcontext.HTTPRequest(ctx)

	switch method {
	case http.MethodGet:
		query := map[string]string{}
		for key, values := range httpReq.URL.Query() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			TagName:          "json",
			Result:           &req,
		})
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(query); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot decode query: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid query")
		}

	case http.MethodPost:
		contentType := httpReq.Header.Get("Content-Type")
		if contentType == "" || strings.HasPrefix(contentType, "application/json") {
			if err := json.NewDecoder(httpReq.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				xcontext.Logger(ctx).Debugf("Cannot decode body: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Invalid body")
			}
		}
	}

	return &req, nil
}
