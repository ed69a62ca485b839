package httpclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePassthroughWithSuccessAndData(t *testing.T) {
	body := []byte(`{"success":false,"data":{"_id":"a1"},"message":"nope"}`)

	env := Normalize(200, body)

	if env.Success {
		t.Fatalf("expected success=false to survive passthrough on a 200")
	}
	if env.Message != "nope" {
		t.Fatalf("expected message %q, got %q", "nope", env.Message)
	}

	out, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	if string(out) != string(body) {
		t.Fatalf("passthrough must round-trip byte-for-byte:\n got %s\nwant %s", out, body)
	}
}

func TestNormalizePassthroughWithSuccessOnly(t *testing.T) {
	body := []byte(`{"success":true,"count":3}`)

	env := Normalize(404, body)

	if !env.Success {
		t.Fatalf("body's own success flag must win over the status code")
	}
	if _, ok := env.Extra["count"]; !ok {
		t.Fatalf("expected extra field count to be preserved")
	}
}

func TestNormalizeWrapsArray(t *testing.T) {
	env := Normalize(200, []byte(`[{"_id":"c1"},{"_id":"c2"}]`))

	if !env.Success {
		t.Fatalf("arrays are always a successful listing")
	}
	if env.Message != DefaultSuccessMessage {
		t.Fatalf("expected default message, got %q", env.Message)
	}

	var items []map[string]string
	if err := env.Decode(&items); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	assert.Len(t, items, 2)
}

func TestNormalizeWrapsPlainObject(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantMessage string
	}{
		{"2xx with message", 200, `{"name":"x","message":"stored"}`, true, "stored"},
		{"2xx without message", 201, `{"name":"x"}`, true, DefaultSuccessMessage},
		{"non-2xx", 500, `{"name":"x"}`, false, DefaultSuccessMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Normalize(tt.status, []byte(tt.body))
			if env.Success != tt.wantSuccess {
				t.Fatalf("expected success=%v, got %v", tt.wantSuccess, env.Success)
			}
			if env.Message != tt.wantMessage {
				t.Fatalf("expected message %q, got %q", tt.wantMessage, env.Message)
			}

			var obj map[string]string
			if err := env.Decode(&obj); err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if obj["name"] != "x" {
				t.Fatalf("expected wrapped body to keep its fields, got %v", obj)
			}
		})
	}
}

func TestNormalizeSpreadsDataOnlyObject(t *testing.T) {
	env := Normalize(200, []byte(`{"data":{"_id":"p1"},"total":10}`))

	if !env.Success {
		t.Fatalf("expected computed success=true for a 200")
	}
	if _, ok := env.Extra["total"]; !ok {
		t.Fatalf("expected spread to keep sibling fields")
	}

	var obj map[string]string
	if err := env.Decode(&obj); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if obj["_id"] != "p1" {
		t.Fatalf("expected data payload, got %v", obj)
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	empty := Normalize(204, nil)
	if !empty.Success || empty.Message != DefaultSuccessMessage {
		t.Fatalf("empty 2xx body should normalize to a bare success envelope")
	}

	primitive := Normalize(200, []byte(`42`))
	var n int
	if err := primitive.Decode(&n); err != nil || n != 42 {
		t.Fatalf("expected primitive body to be wrapped as data, got %v (err %v)", n, err)
	}

	nonJSON := Normalize(502, []byte(`upstream timeout`))
	if nonJSON.Success {
		t.Fatalf("expected success=false for a 502")
	}
	var s string
	if err := nonJSON.Decode(&s); err != nil || s != "upstream timeout" {
		t.Fatalf("expected non-JSON body to become a string payload, got %q (err %v)", s, err)
	}
}

func TestErrorMessagePriority(t *testing.T) {
	tests := []struct {
		name string
		env  *Envelope
		want string
	}{
		{
			"data.message wins",
			&Envelope{Data: json.RawMessage(`{"message":"bad plan","error":"e"}`), Message: "outer"},
			"bad plan",
		},
		{
			"data.error next",
			&Envelope{Data: json.RawMessage(`{"error":"broken"}`), Message: "outer"},
			"broken",
		},
		{
			"data.errors joined",
			&Envelope{Data: json.RawMessage(`{"errors":["a","b"]}`)},
			"a, b",
		},
		{
			"envelope message",
			&Envelope{Message: "outer"},
			"outer",
		},
		{
			"nil envelope",
			nil,
			"Request failed",
		},
		{
			"nothing usable",
			&Envelope{Data: json.RawMessage(`{"other":1}`)},
			"Request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.env); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
