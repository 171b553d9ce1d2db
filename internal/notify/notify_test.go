package notify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/multierr"
)

type recorder struct {
	calls int
	err   error
}

func (r *recorder) Notify(context.Context, string, string, string) error {
	r.calls++
	return r.err
}

func TestMulti_SendsToAllAndCombinesErrors(t *testing.T) {
	errA := errors.New("a down")
	errB := errors.New("b down")
	a, b, ok := &recorder{err: errA}, &recorder{err: errB}, &recorder{}

	err := Multi{a, nil, ok, b}.Notify(context.Background(), "", "s", "b")
	if a.calls != 1 || b.calls != 1 || ok.calls != 1 {
		t.Fatalf("calls: a=%d b=%d ok=%d", a.calls, b.calls, ok.calls)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("want both errors, got %v", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("want 2 errors, got %d", n)
	}
}

func TestMulti_AllOK(t *testing.T) {
	if err := (Multi{Nop{}, &recorder{}}).Notify(context.Background(), "", "s", "b"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
