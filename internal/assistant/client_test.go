package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Question != "what is ICE?" {
			t.Errorf("question = %q", req.Question)
		}
		json.NewEncoder(w).Encode(map[string]string{"reply": "interactive connectivity establishment"})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	reply, err := c.Ask(context.Background(), "what is ICE?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "interactive connectivity establishment" {
		t.Fatalf("reply = %q", reply)
	}
}

func TestAsk_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	if _, err := c.Ask(context.Background(), "q"); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}

func TestAsk_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", 500*time.Millisecond)
	if _, err := c.Ask(context.Background(), "q"); err == nil {
		t.Fatalf("expected error for unreachable proxy")
	}
}
