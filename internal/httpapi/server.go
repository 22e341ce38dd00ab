package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edgellm/internal/catalog"
	"edgellm/internal/generation"
	"edgellm/internal/prompt"
	"edgellm/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Ready() bool
	RequestLoadByName(ctx context.Context, filename string) error
	RequestLoadFor(ctx context.Context, c catalog.Category, p catalog.Perspective) error
	CurrentResident() (catalog.Descriptor, bool)
	Unload(ctx context.Context) error
	Generate(ctx context.Context, prompt string, p catalog.Perspective) iter.Seq[generation.Event]
}

// NewMux builds the router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: orDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: orDefault(corsAllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type", "X-Request-Id", "X-Log-Level"}),
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// JSON endpoints; /generate streams and stays uncompressed.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
		})
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, svc.Status())
		})
		r.Post("/prompt", handlePrompt)
	})

	r.Post("/load", func(w http.ResponseWriter, r *http.Request) { handleLoad(svc, w, r) })
	r.Delete("/resident", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(loadTimeout)*time.Second)
		defer cancel()
		if err := svc.Unload(ctx); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, svc.Status())
	})
	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) { handleGenerate(svc, w, r) })

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("closed"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// decodeJSON enforces the content type and body limit and decodes into v.
// On failure it writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func parsePair(category, perspective string) (catalog.Category, catalog.Perspective, error) {
	c, err := catalog.ParseCategory(category)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	p, err := catalog.ParsePerspective(perspective)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return c, p, nil
}

func handleLoad(svc Service, w http.ResponseWriter, r *http.Request) {
	var req types.LoadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(loadTimeout)*time.Second)
	defer cancel()

	var err error
	switch {
	case strings.TrimSpace(req.Model) != "":
		err = svc.RequestLoadByName(ctx, strings.TrimSpace(req.Model))
	case req.Category != "" && req.Perspective != "":
		var c catalog.Category
		var p catalog.Perspective
		if c, p, err = parsePair(req.Category, req.Perspective); err == nil {
			err = svc.RequestLoadFor(ctx, c, p)
		}
	default:
		writeJSONError(w, http.StatusBadRequest, "model or category and perspective are required")
		return
	}
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			writeJSONError(w, http.StatusGatewayTimeout, "timed out waiting for the model slot")
			return
		}
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	resp := types.LoadResponse{}
	if d, ok := svc.CurrentResident(); ok {
		resp.Resident = modelOf(d)
	}
	writeJSON(w, resp)
}

func handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req types.PromptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, p, err := parsePair(req.Category, req.Perspective)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	text, err := prompt.Build(c, p, toInput(req.Data))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, types.PromptResponse{Prompt: text})
}

func handleGenerate(svc Service, w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if generateTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, time.Duration(generateTimeout)*time.Second)
		defer tcancel()
	}

	if m := strings.TrimSpace(req.Model); m != "" {
		if err := svc.RequestLoadByName(ctx, m); err != nil {
			if r.Context().Err() == nil {
				writeJSONError(w, statusFor(err), err.Error())
			}
			return
		}
	}
	resident, ok := svc.CurrentResident()
	if !ok {
		writeJSONError(w, http.StatusConflict, generation.ErrNoModelResident.Error())
		return
	}

	persp := resident.Perspective
	if req.Perspective != "" {
		p, err := catalog.ParsePerspective(req.Perspective)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		persp = p
	}
	text := req.Prompt
	if strings.TrimSpace(text) == "" && req.Data != nil {
		cat := resident.Category
		if req.Category != "" {
			c, err := catalog.ParseCategory(req.Category)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			cat = c
		}
		built, err := prompt.Build(cat, persp, toInput(*req.Data))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		text = built
	}
	if strings.TrimSpace(text) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt or data is required")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, _ := w.(http.Flusher)
	lvl := requestLogLevel(r)
	writer := io.Writer(w)
	if lvl >= LevelDebug {
		writer = io.MultiWriter(w, &loggingLineWriter{})
	}
	enc := json.NewEncoder(writer)

	httpInflight.WithLabelValues("/generate").Inc()
	defer httpInflight.WithLabelValues("/generate").Dec()
	start := time.Now()
	logRequest(r, lvl, "generate start", 0, time.Time{}, nil)

	var final generation.Event
	for ev := range svc.Generate(ctx, text, persp) {
		streamedEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
		if ev.Terminal() {
			final = ev
		}
		if err := enc.Encode(toEvent(ev)); err != nil {
			// client went away; breaking stops the engine
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	logRequest(r, lvl, "generate end", http.StatusOK, start, final.Err)
}

func modelOf(d catalog.Descriptor) types.Model {
	return types.Model{
		Filename:    d.Filename,
		DisplayName: d.DisplayName,
		Category:    string(d.Category),
		Perspective: string(d.Perspective),
		Priority:    d.Priority,
		Present:     true,
		Resident:    true,
	}
}

func toEvent(ev generation.Event) types.GenerateEvent {
	return types.GenerateEvent{
		Kind:       string(ev.Kind),
		Text:       ev.Text,
		TokenCount: ev.TokenCount,
		Raw:        ev.Raw,
		StopReason: string(ev.StopReason),
		Message:    ev.Message,
	}
}

func toInput(d types.ActivityData) prompt.Input {
	in := prompt.Input{
		Steps:         d.Steps,
		Calories:      d.Calories,
		ActiveMinutes: d.ActiveMinutes,
		DistanceKm:    d.DistanceKm,
		HeartRate:     d.HeartRate,
		SleepHours:    d.SleepHours,
		WaterMl:       d.WaterMl,
	}
	if d.BloodPressure != nil {
		in.BloodPressure = &prompt.BloodPressure{Systolic: d.BloodPressure.Systolic, Diastolic: d.BloodPressure.Diastolic}
	}
	if d.BestMetric != nil {
		in.BestMetric = &prompt.Metric{Name: d.BestMetric.Name, Value: d.BestMetric.Value}
	}
	return in
}
