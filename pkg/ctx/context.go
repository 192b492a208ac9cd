// Package ctx gives handlers a single *Context argument carrying the
// request, the response writer and the envelope helpers:
//
//	func (pc *ProductController) Show(c *ctx.Context) {
//	    p, err := pc.service.Get(c.Context(), c.Param("id"))
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Success(p)
//	}
//
//	api.Get("/products/{id}", "products.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/shopfront/pkg/bind"
	"github.com/shashiranjanraj/shopfront/pkg/response"
	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Context wraps a request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{New: func() any { return new(Context) }}

// Wrap adapts h to http.HandlerFunc. The Context is recycled after h
// returns and must not be retained.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := pool.Get().(*Context)
		c.W, c.R = w, r
		defer func() {
			c.W, c.R = nil, nil
			pool.Put(c)
		}()
		h(c)
	}
}

// Param returns a chi path parameter.
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

func (c *Context) Header(key string) string { return c.R.Header.Get(key) }

// Body reads the raw body, capped at the same limit BindJSON uses. Webhook
// signature checks need the exact bytes.
func (c *Context) Body() ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(c.W, c.R.Body, bind.MaxBodyBytes()))
}

func (c *Context) Context() context.Context { return c.R.Context() }

// BindJSON decodes the body into dest and validates it. It writes a 400
// for unreadable bodies or a 422 with field errors, and reports false; the
// handler should then return without writing.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Envelope{Status: http.StatusBadRequest, Message: err.Error()})
		return false
	}
	if validate.HasErrors(errs) {
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// JSON writes v with the given status code.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// Success sends {"status":200,"data":...}.
func (c *Context) Success(data any) { response.Success(c.W, data) }

// SuccessMessage sends a 200 envelope carrying a message and optional data.
func (c *Context) SuccessMessage(message string, data any) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Message: message, Data: data})
}

func (c *Context) Created(data any) { response.Created(c.W, data) }

// Fail writes err as an error envelope with the status its kind maps to.
func (c *Context) Fail(err error) { response.FromError(c.W, c.R, err) }
