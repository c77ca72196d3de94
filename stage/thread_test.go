package stage_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/glstate/stage"
)

func TestOperationThreadRunsInOrder(t *testing.T) {
	initRan := false
	th := stage.NewOperationThread(func() { initRan = true })
	defer th.Close()

	var order []int
	for i := range 5 {
		if err := th.Run(func() { order = append(order, i) }); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if !initRan {
		t.Error("init did not run before the first operation")
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want 0..4", order)
		}
	}
}

func TestOperationThreadSerializesCallers(t *testing.T) {
	th := stage.NewOperationThread(nil)
	defer th.Close()

	counter := 0
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = th.Run(func() { counter++ })
		}()
	}
	wg.Wait()
	if counter != 16 {
		t.Errorf("counter = %d, want 16", counter)
	}
}

func TestOperationThreadClose(t *testing.T) {
	th := stage.NewOperationThread(nil)
	th.Close()
	th.Close()
	if err := th.Run(func() {}); !errors.Is(err, stage.ErrThreadClosed) {
		t.Errorf("Run() after Close = %v, want ErrThreadClosed", err)
	}
}
