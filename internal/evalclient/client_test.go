package evalclient

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/pkg/reviewdto"
)

func serve(t *testing.T, h fasthttp.RequestHandler) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: h}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return NewClient("http://evalsvc/",
		WithDialer(func(string) (net.Conn, error) { return ln.Dial() }),
		WithTimeout(2*time.Second),
	)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	b, _ := json.Marshal(v)
	ctx.SetBody(b)
}

func TestClient_Evaluate(t *testing.T) {
	var got reviewdto.AnalysisRequest
	c := serve(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/analyze" {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		_ = json.Unmarshal(ctx.PostBody(), &got)
		writeJSON(ctx, 200, reviewdto.NewAnalysisResponse("e2e4", 34, false))
	})

	s, err := c.Evaluate(context.Background(), "startpos-fen", 12)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := review.EvaluationSample{Evaluation: 34, RecommendedMove: "e2e4"}
	if s != want {
		t.Fatalf("Evaluate() = %+v, want %+v", s, want)
	}
	if got.FEN != "startpos-fen" || got.Depth != 12 {
		t.Fatalf("request = %+v", got)
	}
}

func TestClient_EvaluateBatch(t *testing.T) {
	c := serve(t, func(ctx *fasthttp.RequestCtx) {
		var req reviewdto.BatchRequest
		_ = json.Unmarshal(ctx.PostBody(), &req)
		out := make([]reviewdto.AnalysisResponse, len(req.FENs))
		for i := range req.FENs {
			out[i] = reviewdto.NewAnalysisResponse("", i*10, i == 2)
		}
		writeJSON(ctx, 200, out)
	})

	got, err := c.EvaluateBatch(context.Background(), []string{"a", "b", "c"}, 12)
	if err != nil {
		t.Fatalf("EvaluateBatch: %v", err)
	}
	if len(got) != 3 || got[1].Evaluation != 10 || !got[2].IsMate || got[0].RecommendedMove != "" {
		t.Fatalf("EvaluateBatch() = %+v", got)
	}
}

func TestClient_InBandErrorFailsBatch(t *testing.T) {
	c := serve(t, func(ctx *fasthttp.RequestCtx) {
		writeJSON(ctx, 200, []reviewdto.AnalysisResponse{
			reviewdto.NewAnalysisResponse("e2e4", 0, false),
			reviewdto.FailedAnalysis(errors.New("engine crashed")),
		})
	})
	_, err := c.EvaluateBatch(context.Background(), []string{"a", "b"}, 12)
	if !errors.Is(err, ErrEngineReported) {
		t.Fatalf("err = %v, want ErrEngineReported", err)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := serve(t, func(ctx *fasthttp.RequestCtx) {
		if calls.Add(1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		writeJSON(ctx, 200, reviewdto.NewAnalysisResponse("d2d4", -5, false))
	})
	s, err := c.Evaluate(context.Background(), "x", 12)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if s.Evaluation != -5 || calls.Load() != 3 {
		t.Fatalf("Evaluate() = %+v after %d calls", s, calls.Load())
	}
}

func TestClient_DomainErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := serve(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		writeJSON(ctx, 400, reviewdto.DomainError{Code: reviewdto.CodeInvalidFEN, Message: "bad fen"})
	})
	_, err := c.Evaluate(context.Background(), "x", 12)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != 400 || apiErr.Domain.Code != reviewdto.CodeInvalidFEN {
		t.Fatalf("APIError = %+v", apiErr)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestClient_SendsProvidedHeaders(t *testing.T) {
	var auth atomic.Value
	c := serve(t, func(ctx *fasthttp.RequestCtx) {
		auth.Store(string(ctx.Request.Header.Peek("Authorization")))
		writeJSON(ctx, 200, reviewdto.NewAnalysisResponse("e2e4", 0, false))
	})
	WithHeaderProvider(BearerToken("k1"))(c)

	if _, err := c.Evaluate(context.Background(), "x", 12); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := auth.Load(); got != "Bearer k1" {
		t.Fatalf("Authorization = %v, want Bearer k1", got)
	}
}

func TestBearerToken_EmptyKeySendsNothing(t *testing.T) {
	if h := BearerToken("")(); len(h) != 0 {
		t.Fatalf("headers = %v, want none", h)
	}
}

func TestClient_RetryLimit(t *testing.T) {
	var calls atomic.Int32
	c := serve(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
	})
	WithRetry(2)(c)

	_, err := c.Evaluate(context.Background(), "x", 12)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != fasthttp.StatusServiceUnavailable {
		t.Fatalf("err = %v, want 503 APIError", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestWithMaxConnsPerHost(t *testing.T) {
	c := NewClient("http://evalsvc", WithMaxConnsPerHost(4))
	if c.http.MaxConnsPerHost != 4 {
		t.Fatalf("MaxConnsPerHost = %d, want 4", c.http.MaxConnsPerHost)
	}
	WithMaxConnsPerHost(0)(c)
	if c.http.MaxConnsPerHost != 4 {
		t.Fatalf("zero should keep the current limit, got %d", c.http.MaxConnsPerHost)
	}
}

func TestToSample_RoundsFractionalCentipawns(t *testing.T) {
	s, err := ToSample(reviewdto.AnalysisResponse{Evaluation: 12.6})
	if err != nil || s.Evaluation != 13 {
		t.Fatalf("ToSample() = %+v, %v", s, err)
	}
}
