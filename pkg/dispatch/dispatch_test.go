package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRun_RunsContinuationsInOrder(t *testing.T) {
	var order []int
	err := Run(context.Background(), func(ctx context.Context, l *Loop) {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				i := i
				l.Post(func() { order = append(order, i) })
			}
		}()
		go func() {
			wg.Wait()
			l.Complete(nil)
		}()
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 5 {
		t.Fatalf("got %v", order)
	}
	for i, v := range order {
		if v != i {
			t.Errorf("got %v, want ascending order", order)
			break
		}
	}
}

func TestRun_ReturnsCompletionError(t *testing.T) {
	errTest := errors.New("test")
	err := Run(context.Background(), func(ctx context.Context, l *Loop) {
		time.AfterFunc(time.Millisecond, func() { l.Complete(errTest) })
	})
	if err != errTest {
		t.Errorf("got %v, want %v", err, errTest)
	}
}

func TestRun_StopsAtCompletion(t *testing.T) {
	ran := false
	var loop *Loop
	Run(context.Background(), func(ctx context.Context, l *Loop) {
		loop = l
		l.Complete(nil)
		l.Post(func() { ran = true })
	})
	if ran {
		t.Errorf("continuation posted after Complete ran")
	}
	if err := loop.Post(func() {}); err != ErrClosed {
		t.Errorf("Post after Run returned %v, want ErrClosed", err)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, func(context.Context, *Loop) {})
	if err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestFromContext(t *testing.T) {
	Run(context.Background(), func(ctx context.Context, l *Loop) {
		if got, ok := FromContext(ctx); !ok || got != l {
			t.Errorf("FromContext did not return the loop")
		}
		l.Complete(nil)
	})
	if _, ok := FromContext(context.Background()); ok {
		t.Errorf("FromContext found a loop in a plain context")
	}
}
