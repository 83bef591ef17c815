package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/tv_snapshot/internal/chart"
	"github.com/dgnsrekt/tv_snapshot/internal/metrics"
	"github.com/dgnsrekt/tv_snapshot/internal/pipeline"
	"github.com/dgnsrekt/tv_snapshot/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Service interface {
	Run(ctx context.Context, raw map[string]any) (storage.CaptureResult, []chart.Outcome, error)
	ListResults(ctx context.Context) ([]storage.CaptureResult, error)
	FindResult(ctx context.Context, key string) (storage.CaptureResult, error)
	ResultImage(ctx context.Context, key string) ([]byte, error)
}

// captureSummary is a capture record without the inline image payloads,
// which can run to megabytes per record.
type captureSummary struct {
	Symbol     string    `json:"symbol"`
	Interval   string    `json:"interval"`
	Indicators []string  `json:"indicators"`
	Theme      string    `json:"theme"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	StorageKey string    `json:"storageKey"`
	PublicURL  string    `json:"publicUrl,omitempty"`
	ImageURL   string    `json:"imageUrl"`
	CapturedAt time.Time `json:"capturedAt"`
}

func summarize(rec storage.CaptureResult) captureSummary {
	return captureSummary{
		Symbol:     rec.Symbol,
		Interval:   rec.Interval,
		Indicators: rec.Indicators,
		Theme:      rec.Theme,
		Width:      rec.Width,
		Height:     rec.Height,
		StorageKey: rec.StorageKey,
		PublicURL:  rec.PublicURL,
		ImageURL:   "/api/v1/captures/" + rec.StorageKey + "/image",
		CapturedAt: rec.CapturedAt,
	}
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Chart Snapshot API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Handle("/metrics", promhttp.Handler())

	registerCaptureHandlers(api, svc)
	registerMiscHandlers(api)

	return router
}

func registerCaptureHandlers(api huma.API, svc Service) {
	type captureOutput struct {
		Body struct {
			Capture  captureSummary  `json:"capture"`
			Outcomes []chart.Outcome `json:"outcomes"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "run-capture", Method: http.MethodPost, Path: "/api/v1/captures", Summary: "Run a chart capture", Tags: []string{"Captures"}},
		func(ctx context.Context, input *struct {
			Body map[string]any `doc:"Capture request overrides; omitted fields fall back to defaults"`
		}) (*captureOutput, error) {
			started := time.Now()
			rec, outcomes, err := svc.Run(ctx, input.Body)
			if err != nil {
				metrics.ObserveCapture("failure", errorCode(err), time.Since(started).Seconds())
				return nil, mapErr(err)
			}
			metrics.ObserveCapture("success", "", time.Since(started).Seconds())
			out := &captureOutput{}
			out.Body.Capture = summarize(rec)
			out.Body.Outcomes = outcomes
			if out.Body.Outcomes == nil {
				out.Body.Outcomes = []chart.Outcome{}
			}
			return out, nil
		})

	type listCapturesOutput struct {
		Body struct {
			Captures []captureSummary `json:"captures"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-captures", Method: http.MethodGet, Path: "/api/v1/captures", Summary: "List persisted captures", Tags: []string{"Captures"}},
		func(ctx context.Context, input *struct{}) (*listCapturesOutput, error) {
			recs, err := svc.ListResults(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listCapturesOutput{}
			out.Body.Captures = make([]captureSummary, 0, len(recs))
			for _, rec := range recs {
				out.Body.Captures = append(out.Body.Captures, summarize(rec))
			}
			return out, nil
		})

	type captureKeyInput struct {
		Key string `path:"key"`
	}
	type getCaptureOutput struct {
		Body captureSummary
	}
	huma.Register(api, huma.Operation{OperationID: "get-capture", Method: http.MethodGet, Path: "/api/v1/captures/{key}", Summary: "Get a capture's metadata", Tags: []string{"Captures"}},
		func(ctx context.Context, input *captureKeyInput) (*getCaptureOutput, error) {
			rec, err := svc.FindResult(ctx, input.Key)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &getCaptureOutput{}
			out.Body = summarize(rec)
			return out, nil
		})
	type captureImageOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-capture-image",
		Method:      http.MethodGet,
		Path:        "/api/v1/captures/{key}/image",
		Summary:     "Get a capture's stored image",
		Tags:        []string{"Captures"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Capture image",
				Content: map[string]*huma.MediaType{
					"image/png": {
						Schema: &huma.Schema{Type: "string", Format: "binary"},
					},
				},
			},
		},
	}, func(ctx context.Context, input *captureKeyInput) (*captureImageOutput, error) {
		data, err := svc.ResultImage(ctx, input.Key)
		if err != nil {
			return nil, mapErr(err)
		}
		return &captureImageOutput{ContentType: "image/png", Body: data}, nil
	})
}

func registerMiscHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}

func errorCode(err error) string {
	var coded *pipeline.CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return "UNKNOWN"
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *pipeline.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case pipeline.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case pipeline.CodeResultNotFound:
			return huma.Error404NotFound(coded.Message)
		case pipeline.CodeBrowserUnavailable, pipeline.CodeNavigationFailed:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
