package sampling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func gatewayServer(t *testing.T, status int, body string, check func(r *http.Request, payload map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openrouter-gateway" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(r, payload)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSamplingClient_Analyze(t *testing.T) {
	completion, _ := json.Marshal(map[string]string{"content": "Dal tadka with jeera rice"})
	body, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"result": map[string]any{
			"content": []map[string]any{{"type": "text", "text": string(completion)}},
		},
	})

	srv := gatewayServer(t, http.StatusOK, string(body), func(r *http.Request, payload map[string]any) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if payload["method"] != "tools/call" {
			t.Errorf("method = %v", payload["method"])
		}
		params := payload["params"].(map[string]any)
		if params["name"] != "create_completion" {
			t.Errorf("tool = %v", params["name"])
		}
		args := params["arguments"].(map[string]any)
		if args["model"] != "test-model" {
			t.Errorf("model = %v", args["model"])
		}
		messages, _ := json.Marshal(args["messages"])
		if !strings.Contains(string(messages), "data:image/jpeg;base64,aW1n") {
			t.Error("image not forwarded as data URL")
		}
		if !strings.Contains(string(messages), "Additional context: lunch") {
			t.Error("description not forwarded")
		}
	})

	client := NewSamplingClient(GatewayConfig{ProxyURL: srv.URL, APIKey: "secret", Model: "test-model"})
	got, err := client.Analyze(context.Background(), "aW1n", "lunch")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Dal tadka with jeera rice" {
		t.Errorf("got %q", got)
	}
}

func TestSamplingClient_PlainTextResult(t *testing.T) {
	body := `{"result":{"content":[{"type":"text","text":"NOT_INDIAN_FOOD - pizza"}]}}`
	srv := gatewayServer(t, http.StatusOK, body, nil)

	got, err := NewSamplingClient(GatewayConfig{ProxyURL: srv.URL}).Analyze(context.Background(), "aW1n", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "NOT_INDIAN_FOOD - pizza" {
		t.Errorf("got %q", got)
	}
}

func TestSamplingClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http status", http.StatusBadGateway, "upstream down"},
		{"rpc error", http.StatusOK, `{"error":{"code":-32000,"message":"quota"}}`},
		{"unexpected shape", http.StatusOK, `{"result":{}}`},
		{"invalid json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := gatewayServer(t, tt.status, tt.body, nil)
			_, err := NewSamplingClient(GatewayConfig{ProxyURL: srv.URL}).Analyze(context.Background(), "aW1n", "")
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
