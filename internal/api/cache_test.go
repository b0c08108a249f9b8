package api_test

import (
	"fmt"
	"testing"

	"github.com/redline-eval/redline/internal/api"
)

func TestTaskCacheEviction(t *testing.T) {
	c := api.NewTaskCache(2)
	c.Put(&api.Task{ID: "a"})
	c.Put(&api.Task{ID: "b"})

	// Touch a so b becomes the oldest.
	if c.Get("a") == nil {
		t.Fatal("expected a")
	}
	c.Put(&api.Task{ID: "c"})

	if c.Get("b") != nil {
		t.Error("expected b evicted")
	}
	if c.Get("a") == nil || c.Get("c") == nil {
		t.Error("expected a and c cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestTaskCacheReplace(t *testing.T) {
	c := api.NewTaskCache(0)
	c.Put(&api.Task{ID: "a", Status: api.TaskFailed})
	c.Put(&api.Task{ID: "a", Status: api.TaskCompleted})
	if got := c.Get("a"); got == nil || got.Status != api.TaskCompleted {
		t.Errorf("expected replaced task, got %+v", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestTaskCacheConcurrent(t *testing.T) {
	c := api.NewTaskCache(16)
	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("%d-%d", g, i)
				c.Put(&api.Task{ID: id})
				c.Get(id)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}
	if c.Len() != 16 {
		t.Errorf("Len = %d, want 16", c.Len())
	}
}
