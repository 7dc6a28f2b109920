package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubClient(fn roundTripperFunc) *client {
	c := newClient("http://node.test", "tok")
	c.http = &http.Client{Transport: fn}
	return c
}

func TestClientSendsBearerAndDecodesResult(t *testing.T) {
	c := stubClient(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if req.Header.Get("X-Request-ID") == "" {
			t.Fatalf("missing request id")
		}
		body, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(body), `"method":"w2g_stateRoot"`) {
			t.Fatalf("unexpected body %s", body)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"jsonrpc":"2.0","id":1,"result":{"height":3}}`)),
		}, nil
	})
	result, err := c.Call(context.Background(), "w2g_stateRoot", nil)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	var out struct{ Height uint64 }
	if err := json.Unmarshal(result, &out); err != nil || out.Height != 3 {
		t.Fatalf("unexpected result %s (%v)", result, err)
	}
}

func TestClientSurfacesRPCError(t *testing.T) {
	c := stubClient(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"jsonrpc":"2.0","id":1,"error":{"code":-32003,"message":"call reverted","data":"not enough tokens"}}`)),
		}, nil
	})
	_, err := c.Call(context.Background(), "w2g_donateTokens", nil)
	if err == nil || !strings.Contains(err.Error(), "-32003") || !strings.Contains(err.Error(), "not enough tokens") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestClientDialErrorIncludesEndpoint(t *testing.T) {
	c := stubClient(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused (test stub)")
	})
	_, err := c.Call(context.Background(), "w2g_stateRoot", nil)
	if err == nil || !strings.Contains(err.Error(), "http://node.test/") {
		t.Fatalf("expected endpoint in error, got %v", err)
	}
}
