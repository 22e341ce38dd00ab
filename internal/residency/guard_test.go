package residency

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"edgellm/internal/catalog"
	"edgellm/internal/engine"
	"edgellm/internal/events"
)

// createModelFile writes a small non-empty model file into dir.
func createModelFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("GGUF0000"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestGuard(t *testing.T, eng engine.Engine, files ...string) (*Guard, *events.Memory) {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		createModelFile(t, dir, f)
	}
	pub := events.NewMemory(0)
	return NewGuard(Config{Engine: eng, ModelsDir: dir, Logger: zerolog.Nop(), Events: pub}), pub
}

func desc(name string, p catalog.Perspective) catalog.Descriptor {
	return catalog.NewDescriptor(name, name, catalog.CategoryHealth, p)
}

func TestSwapLoadsAndReports(t *testing.T) {
	eng := engine.NewScripted()
	g, pub := newTestGuard(t, eng, "a.gguf")
	if g.IsResident() {
		t.Fatalf("expected empty slot")
	}
	a := desc("a.gguf", catalog.PerspectiveSelf)
	if err := g.Swap(context.Background(), a); err != nil {
		t.Fatalf("swap: %v", err)
	}
	cur, ok := g.Current()
	if !ok || !cur.Same(a) || !g.IsResidentModel(a) {
		t.Fatalf("expected a resident, got %+v ok=%v", cur, ok)
	}
	names := pub.Names()
	if len(names) != 2 || names[0] != events.SwapStart || names[1] != events.SwapDone {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestSwapSameModelIsNoop(t *testing.T) {
	eng := engine.NewScripted()
	g, _ := newTestGuard(t, eng, "a.gguf")
	a := desc("a.gguf", catalog.PerspectiveSelf)
	for i := 0; i < 3; i++ {
		if err := g.Swap(context.Background(), a); err != nil {
			t.Fatalf("swap %d: %v", i, err)
		}
	}
	if calls := eng.Calls(); len(calls) != 1 {
		t.Fatalf("expected a single native load, got %v", calls)
	}
}

func TestSwapReplacesResident(t *testing.T) {
	eng := engine.NewScripted()
	g, _ := newTestGuard(t, eng, "a.gguf", "b.gguf")
	_ = g.Swap(context.Background(), desc("a.gguf", catalog.PerspectiveSelf))
	if err := g.Swap(context.Background(), desc("b.gguf", catalog.PerspectiveOther)); err != nil {
		t.Fatalf("swap b: %v", err)
	}
	want := []string{"load:a.gguf", "unload", "load:b.gguf"}
	got := eng.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls=%v want %v", got, want)
		}
	}
	if cur, _ := g.Current(); cur.Filename != "b.gguf" {
		t.Fatalf("resident=%q", cur.Filename)
	}
}

func TestSwapMissingFileSkipsEngine(t *testing.T) {
	eng := engine.NewScripted()
	g, _ := newTestGuard(t, eng)
	err := g.Swap(context.Background(), desc("absent.gguf", catalog.PerspectiveSelf))
	if !IsMissingFile(err) {
		t.Fatalf("expected missing file, got %v", err)
	}
	if len(eng.Calls()) != 0 {
		t.Fatalf("engine must not be called: %v", eng.Calls())
	}
	if g.IsResident() {
		t.Fatalf("slot must stay empty")
	}
}

func TestSwapMissingFileAfterEvictLeavesSlotEmpty(t *testing.T) {
	eng := engine.NewScripted()
	g, _ := newTestGuard(t, eng, "a.gguf")
	_ = g.Swap(context.Background(), desc("a.gguf", catalog.PerspectiveSelf))
	if err := g.Swap(context.Background(), desc("absent.gguf", catalog.PerspectiveSelf)); !IsMissingFile(err) {
		t.Fatalf("expected missing file, got %v", err)
	}
	if _, ok := g.Current(); ok {
		t.Fatalf("slot must be vacated")
	}
}

func TestSwapEngineFailure(t *testing.T) {
	eng := engine.NewScripted()
	eng.LoadErr = map[string]error{"bad.gguf": errors.New("ggml: bad magic")}
	g, pub := newTestGuard(t, eng, "bad.gguf")
	err := g.Swap(context.Background(), desc("bad.gguf", catalog.PerspectiveSelf))
	if !IsEngineFailure(err) || IsMissingFile(err) {
		t.Fatalf("expected engine failure, got %v", err)
	}
	if g.IsResident() {
		t.Fatalf("slot must stay empty after engine failure")
	}
	if names := pub.Names(); names[len(names)-1] != events.SwapFailed {
		t.Fatalf("expected swap_failed event, got %v", names)
	}
}

func TestUnloadFailureIsNotFatal(t *testing.T) {
	eng := engine.NewScripted()
	g, pub := newTestGuard(t, eng, "a.gguf", "b.gguf")
	_ = g.Swap(context.Background(), desc("a.gguf", catalog.PerspectiveSelf))
	eng.UnloadErr = errors.New("busy")
	if err := g.Swap(context.Background(), desc("b.gguf", catalog.PerspectiveSelf)); err != nil {
		t.Fatalf("swap should proceed despite unload failure: %v", err)
	}
	if cur, _ := g.Current(); cur.Filename != "b.gguf" {
		t.Fatalf("resident=%q", cur.Filename)
	}
	found := false
	for _, n := range pub.Names() {
		if n == events.UnloadFailed {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unload_failed event")
	}
}

func TestConcurrentSwapsAreSerialized(t *testing.T) {
	eng := engine.NewScripted()
	names := []string{"a.gguf", "b.gguf", "c.gguf", "d.gguf"}
	g, _ := newTestGuard(t, eng, names...)
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = g.Swap(context.Background(), desc(names[i%len(names)], catalog.PerspectiveSelf))
		}(i)
	}
	wg.Wait()
	if n := eng.MaxConcurrentLoads(); n != 1 {
		t.Fatalf("expected at most one load in flight, saw %d", n)
	}
	if _, ok := g.Current(); !ok {
		t.Fatalf("expected a resident model")
	}
}

func TestSwapWaitHonoursContext(t *testing.T) {
	eng := engine.NewScripted()
	eng.Hold = make(chan struct{})
	started := eng.LoadStarted()
	g, _ := newTestGuard(t, eng, "a.gguf", "b.gguf")
	done := make(chan error, 1)
	go func() { done <- g.Swap(context.Background(), desc("a.gguf", catalog.PerspectiveSelf)) }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := g.Swap(ctx, desc("b.gguf", catalog.PerspectiveSelf)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(eng.Hold)
	if err := <-done; err != nil {
		t.Fatalf("first swap: %v", err)
	}
}

func TestEvictDuringGenerationIsReported(t *testing.T) {
	eng := engine.NewScripted()
	g, pub := newTestGuard(t, eng, "a.gguf", "b.gguf")
	_ = g.Swap(context.Background(), desc("a.gguf", catalog.PerspectiveSelf))
	release := g.BeginUse()
	defer release()
	if g.ActiveUsers() != 1 {
		t.Fatalf("active=%d", g.ActiveUsers())
	}
	_ = g.Swap(context.Background(), desc("b.gguf", catalog.PerspectiveSelf))
	found := false
	for _, n := range pub.Names() {
		if n == events.EvictDuringGeneration {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected evict_during_generation event, got %v", pub.Names())
	}
}

func TestUnload(t *testing.T) {
	eng := engine.NewScripted()
	g, _ := newTestGuard(t, eng, "a.gguf")
	if err := g.Unload(context.Background()); err != nil || len(eng.Calls()) != 0 {
		t.Fatalf("unload of empty slot should be a no-op: err=%v calls=%v", err, eng.Calls())
	}
	_ = g.Swap(context.Background(), desc("a.gguf", catalog.PerspectiveSelf))
	if err := g.Unload(context.Background()); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if g.IsResident() || eng.Resident() != "" {
		t.Fatalf("expected empty slot after unload")
	}
}
