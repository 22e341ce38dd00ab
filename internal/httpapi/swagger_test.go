//go:build swagger

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSwaggerDocDescribesAPI(t *testing.T) {
	h := NewMux(&mockService{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("doc.json status=%d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"title": "edgellm API"`, `"/generate"`, `"/load"`, `"/resident"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("doc.json missing %s", want)
		}
	}
}
