package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"edgellm/internal/engine"
	"edgellm/internal/httpapi"
	"edgellm/internal/manager"
	"edgellm/pkg/types"
)

// createTempModelsDir creates a temporary directory populated with small
// .gguf placeholder files.
func createTempModelsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("GGUF"), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir
}

func newServer(t *testing.T, eng *engine.Scripted, modelsDir string) (*httptest.Server, *manager.Manager) {
	t.Helper()
	mgr, err := manager.NewWithConfig(manager.Config{Engine: eng, EngineName: "scripted", ModelsDir: modelsDir, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		_ = mgr.Close()
	})
	return srv, mgr
}

func post(t *testing.T, ctx context.Context, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	return resp
}

func postStatus(t *testing.T, url, body string) int {
	t.Helper()
	resp := post(t, context.Background(), url, body)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode
}

// readEvents decodes an NDJSON /generate stream line by line.
func readEvents(t *testing.T, r io.Reader) []types.GenerateEvent {
	t.Helper()
	var out []types.GenerateEvent
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		var ev types.GenerateEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}
