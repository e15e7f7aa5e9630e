package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/utils/errutil"
	"github.com/gitforge-dev/gitforge/pkg/utils/safe"
)

// The admin front end cannot call GitHub's OAuth endpoints directly
// because they do not send CORS headers. These two paths are forwarded
// verbatim; everything else under /login is refused.

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var relayCORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Accept",
	"Access-Control-Max-Age":       "86400",
}

func setRelayCORS(w http.ResponseWriter) {
	for key, value := range relayCORSHeaders {
		w.Header().Set(key, value)
	}
}

func mountRelay(r chi.Router, cfg *config) {
	r.Route("/login", func(r chi.Router) {
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {
			setRelayCORS(w)
			w.WriteHeader(http.StatusNoContent)
		})
		r.Post("/device/code", relayHandler(cfg))
		r.Post("/oauth/access_token", relayHandler(cfg))
		r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
			setRelayCORS(w)
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Proxy only for /login/device/code and /login/oauth/access_token",
			})
		})
	})
}

func relayHandler(cfg *config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, r, "fail to read relay request", goerr.Wrap(err, "failed to read request body"))
			return
		}

		target := cfg.relayUpstream + r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			respondError(w, r, "fail to build relay request", goerr.Wrap(err, "failed to build upstream request"))
			return
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/x-www-form-urlencoded"
		}
		accept := r.Header.Get("Accept")
		if accept == "" {
			accept = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", accept)

		resp, err := cfg.httpClient.Do(req)
		if err != nil {
			errutil.HandleError(r.Context(), "relay upstream request failed", err)
			setRelayCORS(w)
			respondJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream request failed"})
			return
		}
		defer safe.Close(resp.Body)

		upstream, err := io.ReadAll(resp.Body)
		if err != nil {
			errutil.HandleError(r.Context(), "fail to read relay response", err)
			setRelayCORS(w)
			respondJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to read upstream response"})
			return
		}

		setRelayCORS(w)
		if contentType := resp.Header.Get("Content-Type"); contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		safeWrite(w, resp.StatusCode, upstream)
	}
}
