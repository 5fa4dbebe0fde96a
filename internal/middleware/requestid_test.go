package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var ctxID string
	handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := RequestIDFromContext(r.Context())
		if err != nil {
			t.Errorf("expected request id in context, got error %v", err)
		}
		ctxID = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	headerID := w.Header().Get(RequestIDHeader)
	if headerID == "" {
		t.Fatal("expected X-Request-ID response header to be set")
	}
	if headerID != ctxID {
		t.Errorf("header id = %q, context id = %q, want same value", headerID, ctxID)
	}
}

// クライアントが送ってきたIDは引き継ぐこと
func TestRequestIDMiddleware_PropagatesClientID(t *testing.T) {
	handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := RequestIDFromContext(r.Context())
		if err != nil {
			t.Fatalf("expected request id in context, got error %v", err)
		}
		if id != "client-supplied-id" {
			t.Errorf("request id = %q, want %q", id, "client-supplied-id")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("response header = %q, want %q", got, "client-supplied-id")
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	_, err := RequestIDFromContext(context.Background())
	if err != ErrNoRequestID {
		t.Errorf("err = %v, want ErrNoRequestID", err)
	}
}

// 2つのリクエストには異なるIDが割り当てられること
func TestRequestIDMiddleware_UniquePerRequest(t *testing.T) {
	handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ids := make(map[string]bool)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		ids[w.Header().Get(RequestIDHeader)] = true
	}

	if len(ids) != 2 {
		t.Errorf("got %d unique ids, want 2", len(ids))
	}
}
