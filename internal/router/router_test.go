package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_MethodRouting(t *testing.T) {
	r := New()

	var called string
	r.Get("/invoices", func(w http.ResponseWriter, r *http.Request) { called = "get" })
	r.Post("/invoices", func(w http.ResponseWriter, r *http.Request) { called = "post" })

	req := httptest.NewRequest(http.MethodPost, "/invoices", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "post", called)

	req = httptest.NewRequest(http.MethodGet, "/invoices", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "get", called)

	req = httptest.NewRequest(http.MethodDelete, "/invoices", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "before "+name)
				next.ServeHTTP(w, r)
				order = append(order, "after "+name)
			})
		}
	}

	r := New(mw("global"))
	r.Get("/x", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, mw("route"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, []string{"before global", "before route", "handler", "after route", "after global"}, order)
}

func TestRouter_GroupSharesMux(t *testing.T) {
	var sawGroupMiddleware bool
	groupMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawGroupMiddleware = true
			next.ServeHTTP(w, r)
		})
	}

	root := New()
	root.Get("/open", func(w http.ResponseWriter, r *http.Request) {})

	api := root.Group(groupMW)
	api.Get("/guarded", func(w http.ResponseWriter, r *http.Request) {})

	root.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.False(t, sawGroupMiddleware)

	root.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/guarded", nil))
	assert.True(t, sawGroupMiddleware)
}

func TestRouter_PathValues(t *testing.T) {
	r := New()
	var gotID string
	r.Get("/invoices/{id}", func(w http.ResponseWriter, req *http.Request) {
		gotID = req.PathValue("id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/invoices/abc-123", nil))
	assert.Equal(t, "abc-123", gotID)
}
