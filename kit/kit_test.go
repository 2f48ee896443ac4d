package kit

import (
	"context"
	"testing"
)

func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	if v := GetRequestID(ctx); v != "" {
		t.Fatalf("empty context: got %q", v)
	}

	ctx = WithRequestID(ctx, "req_abc")
	if v := GetRequestID(ctx); v != "req_abc" {
		t.Fatalf("after set: got %q", v)
	}
}

func TestContext_RemoteAddr(t *testing.T) {
	ctx := WithRemoteAddr(context.Background(), "10.0.0.1:5123")
	if v := GetRemoteAddr(ctx); v != "10.0.0.1:5123" {
		t.Fatalf("remote_addr: got %q", v)
	}
}
