package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/domain/interfaces"
	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/utils/errutil"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

type Server struct {
	mux *chi.Mux
}

func safeWrite(w http.ResponseWriter, code int, body []byte) {
	w.WriteHeader(code)

	if _, err := w.Write(body); err != nil {
		logging.Default().Error("fail to write response", slog.Any("error", err))
	}
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Default().Error("fail to marshal response", slog.Any("error", err))
		safeWrite(w, http.StatusInternalServerError, []byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safeWrite(w, code, body)
}

// respondError maps domain sentinels to HTTP status codes.
func respondError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	errutil.HandleError(r.Context(), msg, err)

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, types.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, types.ErrInvalidContent), errors.Is(err, types.ErrInvalidOption):
		code = http.StatusBadRequest
	}
	respondJSON(w, code, map[string]string{"error": err.Error()})
}

type config struct {
	relayUpstream string
	httpClient    httpClient
}

type Option func(*config)

// WithRelayUpstream overrides the OAuth endpoint base the relay forwards
// to. Tests point this at an httptest server.
func WithRelayUpstream(baseURL string) Option {
	return func(cfg *config) {
		cfg.relayUpstream = baseURL
	}
}

func WithHTTPClient(client httpClient) Option {
	return func(cfg *config) {
		cfg.httpClient = client
	}
}

type configFile struct {
	Config *model.GitforgeConfig `json:"config"`
	SHA    types.FileSHA         `json:"sha"`
}

type saveContentRequest struct {
	Items json.RawMessage `json:"items"`
	SHA   types.FileSHA   `json:"sha"`
}

func New(uc interfaces.AdminUseCase, options ...Option) *Server {
	cfg := &config{
		relayUpstream: "https://github.com",
		httpClient:    http.DefaultClient,
	}
	for _, opt := range options {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(preProcess)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(w, http.StatusOK, []byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
				auth, err := uc.StartLogin(r.Context())
				if err != nil {
					respondError(w, r, "fail to start device flow", err)
					return
				}

				// The poll loop outlives this request.
				bgCtx := DetachContext(r.Context())
				go uc.CompleteLogin(bgCtx, auth.DeviceCode, auth.Interval)

				respondJSON(w, http.StatusAccepted, auth)
			})
			r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusOK, uc.Snapshot())
			})
			r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
				uc.Logout()
				respondJSON(w, http.StatusOK, uc.Snapshot())
			})
		})

		r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
			loaded, sha := uc.Config()
			if loaded == nil {
				respondError(w, r, "config requested before session is ready",
					goerr.Wrap(types.ErrUnauthorized, "no configuration loaded"))
				return
			}
			respondJSON(w, http.StatusOK, configFile{Config: loaded, SHA: sha})
		})
		r.Put("/config", func(w http.ResponseWriter, r *http.Request) {
			var body model.GitforgeConfig
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, r, "invalid config payload",
					goerr.Wrap(types.ErrInvalidContent, "config body is not valid JSON"))
				return
			}
			if err := uc.SaveConfig(r.Context(), &body); err != nil {
				respondError(w, r, "fail to save config", err)
				return
			}
			saved, sha := uc.Config()
			respondJSON(w, http.StatusOK, configFile{Config: saved, SHA: sha})
		})

		r.Route("/content/{kind}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				kind := types.ContentKind(chi.URLParam(r, "kind"))
				file, err := uc.LoadContent(r.Context(), kind)
				if err != nil {
					respondError(w, r, "fail to load content", err)
					return
				}
				respondJSON(w, http.StatusOK, file)
			})
			r.Put("/", func(w http.ResponseWriter, r *http.Request) {
				kind := types.ContentKind(chi.URLParam(r, "kind"))
				var body saveContentRequest
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					respondError(w, r, "invalid content payload",
						goerr.Wrap(types.ErrInvalidContent, "content body is not valid JSON"))
					return
				}
				file, err := uc.SaveContent(r.Context(), kind, body.Items, body.SHA)
				if err != nil {
					respondError(w, r, "fail to save content", err)
					return
				}
				respondJSON(w, http.StatusOK, file)
			})
		})
	})

	mountRelay(r, cfg)

	return &Server{
		mux: r,
	}
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}
