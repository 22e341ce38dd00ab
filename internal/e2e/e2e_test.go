package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"edgellm/internal/catalog"
	"edgellm/internal/engine"
	"edgellm/pkg/types"
)

// TestE2E_ConcurrentLoadsSerialize fires loads for every catalog model at
// once and checks the engine never saw two loads in flight.
func TestE2E_ConcurrentLoadsSerialize(t *testing.T) {
	all := catalog.Default().All()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Filename
	}
	eng := engine.NewScripted()
	srv, mgr := newServer(t, eng, createTempModelsDir(t, names...))

	var wg sync.WaitGroup
	codes := make([]int, 0, len(names)*3)
	var mu sync.Mutex
	for round := 0; round < 3; round++ {
		for _, n := range names {
			wg.Add(1)
			go func(n string) {
				defer wg.Done()
				code := -1
				resp, err := http.Post(srv.URL+"/load", "application/json", strings.NewReader(fmt.Sprintf(`{"model":%q}`, n)))
				if err == nil {
					code = resp.StatusCode
					resp.Body.Close()
				}
				mu.Lock()
				codes = append(codes, code)
				mu.Unlock()
			}(n)
		}
	}
	wg.Wait()

	for _, c := range codes {
		if c != http.StatusOK {
			t.Fatalf("load status %d in %v", c, codes)
		}
	}
	if got := eng.MaxConcurrentLoads(); got != 1 {
		t.Fatalf("max concurrent loads = %d", got)
	}
	if _, ok := mgr.CurrentResident(); !ok {
		t.Fatalf("expected a resident model")
	}
	if st := mgr.Status(); st.QueueDepth != 0 {
		t.Fatalf("queue not drained: %+v", st)
	}
}

// TestE2E_GenerateStreamsOverHTTP reads a live NDJSON stream.
func TestE2E_GenerateStreamsOverHTTP(t *testing.T) {
	const model = "wellness-short-q4_k_m.gguf"
	frags := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		frags = append(frags, fmt.Sprintf("<sentence>좋아요 %d번째!</sentence>", i+1))
	}
	eng := engine.NewScripted(frags...)
	srv, _ := newServer(t, eng, createTempModelsDir(t, model))

	if code := postStatus(t, srv.URL+"/load", `{"category":"wellness","perspective":"other_short"}`); code != http.StatusOK {
		t.Fatalf("load status %d", code)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp := post(t, ctx, srv.URL+"/generate", `{"prompt":"hi"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status %d", resp.StatusCode)
	}
	evs := readEvents(t, resp.Body)
	last := evs[len(evs)-1]
	if evs[0].Kind != "loading" || last.Kind != "success" {
		t.Fatalf("events %+v", evs)
	}
	if last.StopReason != "target_reached" || last.TokenCount != 10 {
		t.Fatalf("stop=%s fragments=%d", last.StopReason, last.TokenCount)
	}
	if eng.Consumed() != 10 {
		t.Fatalf("engine consumed %d fragments after stop", eng.Consumed())
	}
}

// TestE2E_StatusReflectsSlot checks /status and /models after a swap.
func TestE2E_StatusReflectsSlot(t *testing.T) {
	eng := engine.NewScripted()
	srv, _ := newServer(t, eng, createTempModelsDir(t, "health-self-q4_k_m.gguf", "health-other-q4_k_m.gguf"))
	for _, m := range []string{"health-self-q4_k_m.gguf", "health-other-q4_k_m.gguf"} {
		if code := postStatus(t, srv.URL+"/load", fmt.Sprintf(`{"model":%q}`, m)); code != http.StatusOK {
			t.Fatalf("load %s: %d", m, code)
		}
	}
	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Resident == nil || st.Resident.Filename != "health-other-q4_k_m.gguf" || st.LoadsTotal != 2 {
		t.Fatalf("status %+v", st)
	}
	want := []string{"load:health-self-q4_k_m.gguf", "unload", "load:health-other-q4_k_m.gguf"}
	calls := eng.Calls()
	if len(calls) != len(want) {
		t.Fatalf("calls %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls %v, want %v", calls, want)
		}
	}
}
