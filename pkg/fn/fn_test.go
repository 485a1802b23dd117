package fn

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestOkAndErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok should be ok")
	}
	if v, err := r.Unwrap(); v != 42 || err != nil {
		t.Fatalf("Unwrap = %d, %v", v, err)
	}

	e := Err[string](errors.New("x"))
	if e.IsOk() || !e.IsErr() {
		t.Fatal("Err should be err")
	}
	if v, err := e.Unwrap(); v != "" || err == nil {
		t.Fatal("Err value should be zero with an error")
	}
}

func TestTracedStage(t *testing.T) {
	var sawSpan bool
	inner := Stage[int, int](func(ctx context.Context, v int) Result[int] {
		sawSpan = trace.SpanFromContext(ctx) != nil
		if v < 0 {
			return Err[int](errors.New("negative"))
		}
		return Ok(v * 2)
	})
	traced := TracedStage("double", inner)

	if v, err := traced(context.Background(), 3).Unwrap(); v != 6 || err != nil {
		t.Fatalf("got %d, %v", v, err)
	}
	if !sawSpan {
		t.Fatal("stage should run with a span in its context")
	}
	if r := traced(context.Background(), -1); r.IsOk() {
		t.Fatal("error should pass through")
	}
}
