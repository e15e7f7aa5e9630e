package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/gitforge-dev/gitforge/pkg/controller/server"
	"github.com/gitforge-dev/gitforge/pkg/infra"
	"github.com/gitforge-dev/gitforge/pkg/repository/memory"
	"github.com/gitforge-dev/gitforge/pkg/usecase"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

func newBareServer() *server.Server {
	clients := infra.New(infra.WithContents(memory.New()))
	sc := usecase.NewSessionController(clients, "octocat", "portfolio", "")
	return server.New(sc)
}

func TestMiddleware(t *testing.T) {
	t.Run("preProcess adds logger with request_id to context", func(t *testing.T) {
		var capturedCtx context.Context

		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedCtx = r.Context()
			w.WriteHeader(http.StatusOK)
		})

		mux := newBareServer().Mux()
		mux.HandleFunc("/test", testHandler)

		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		// The middleware should have created a new logger different from default
		logger := logging.From(capturedCtx)
		defaultLogger := logging.From(context.Background())
		gt.V(t, logger == defaultLogger).Equal(false)
	})

	t.Run("statusCodeLogger captures WriteHeader calls", func(t *testing.T) {
		testCases := []struct {
			name         string
			handlerFunc  http.HandlerFunc
			expectedCode int
		}{
			{
				name: "captures 200 status code",
				handlerFunc: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				},
				expectedCode: http.StatusOK,
			},
			{
				name: "captures 404 status code",
				handlerFunc: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNotFound)
				},
				expectedCode: http.StatusNotFound,
			},
			{
				name: "captures 500 status code",
				handlerFunc: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				},
				expectedCode: http.StatusInternalServerError,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				mux := newBareServer().Mux()
				mux.HandleFunc("/test", tc.handlerFunc)

				req := httptest.NewRequest("GET", "/test", nil)
				w := httptest.NewRecorder()

				mux.ServeHTTP(w, req)

				gt.V(t, w.Code).Equal(tc.expectedCode)
			})
		}
	})

	t.Run("middleware measures request duration", func(t *testing.T) {
		slowHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(10 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		})

		mux := newBareServer().Mux()
		mux.HandleFunc("/slow", slowHandler)

		req := httptest.NewRequest("GET", "/slow", nil)
		w := httptest.NewRecorder()

		start := time.Now()
		mux.ServeHTTP(w, req)
		elapsed := time.Since(start)

		gt.V(t, w.Code).Equal(http.StatusOK)
		gt.V(t, elapsed >= 10*time.Millisecond).Equal(true)
	})

	t.Run("statusCodeLogger defaults to 200 when WriteHeader not called", func(t *testing.T) {
		handlerNoWriteHeader := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})

		mux := newBareServer().Mux()
		mux.HandleFunc("/noheader", handlerNoWriteHeader)

		req := httptest.NewRequest("GET", "/noheader", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		gt.V(t, w.Code).Equal(http.StatusOK)
	})
}
