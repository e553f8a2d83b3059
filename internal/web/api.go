package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/JonMunkholm/PriceView/internal/logging"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

type pricesInput struct {
	Query string `query:"q" doc:"Case-insensitive substring matched against context, currency and value"`
	Sort  string `query:"sort" doc:"value or currency; anything else sorts by value"`
	Dir   string `query:"dir" doc:"asc or desc; anything else sorts ascending"`
}

type pricesOutput struct {
	Body struct {
		Count  int                `json:"count"`
		Prices []core.PriceRecord `json:"prices"`
	}
}

type datasetOutput struct {
	Body core.Dataset
}

type apiReportInput struct {
	Body struct {
		To      string `json:"to" doc:"Recipient address"`
		Subject string `json:"subject,omitempty" doc:"Subject line; blank uses the default"`
	}
}

type apiReportOutput struct {
	Body reportReply
}

// registerAPI mounts the JSON API under /api on r.
func (s *Server) registerAPI(r chi.Router) {
	r.Use(requestMetadata)

	cfg := huma.DefaultConfig("Price Results API", "1.0.0")
	cfg.OpenAPIPath = "/api/openapi"
	cfg.SchemasPath = "/api/schemas"
	cfg.DocsPath = ""
	// Bodies are returned as stored, without a $schema link.
	cfg.CreateHooks = nil
	api := humachi.New(r, cfg)

	huma.Register(api, huma.Operation{OperationID: "list-prices", Method: http.MethodGet, Path: "/api/prices", Summary: "List filtered and sorted prices", Tags: []string{"Prices"}},
		func(ctx context.Context, input *pricesInput) (*pricesOutput, error) {
			records := core.Controls{
				Query:     input.Query,
				Key:       core.SortKey(input.Sort),
				Direction: core.Direction(input.Dir),
			}.Apply(s.store)

			out := &pricesOutput{}
			out.Body.Count = len(records)
			out.Body.Prices = records
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-dataset", Method: http.MethodGet, Path: "/api/dataset", Summary: "Get the full dataset", Tags: []string{"Prices"}},
		func(ctx context.Context, _ *struct{}) (*datasetOutput, error) {
			return &datasetOutput{Body: s.store.Dataset()}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "send-report", Method: http.MethodPost, Path: "/api/report", Summary: "Email the full dataset", Tags: []string{"Reports"}},
		func(ctx context.Context, input *apiReportInput) (*apiReportOutput, error) {
			if s.reporter == nil {
				return nil, huma.Error503ServiceUnavailable("report service not configured")
			}
			if s.reportLimiter != nil && !s.reportLimiter.allow(logging.ClientFromContext(ctx).IP) {
				return nil, huma.Error429TooManyRequests(core.FormatUserError(errRateLimited))
			}

			out := s.reporter.Send(context.WithoutCancel(ctx), input.Body.To, input.Body.Subject)
			switch {
			case out.Invalid():
				return nil, huma.Error422UnprocessableEntity(out.Message)
			case !out.OK:
				return nil, huma.Error502BadGateway(out.Message)
			}
			return &apiReportOutput{Body: reportReply{OK: true, Message: out.Message, ReportID: out.ReportID}}, nil
		})
}

// requestMetadata stores the client IP and user agent on the request context.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequestMetadata(r.Context(), r)))
	})
}
