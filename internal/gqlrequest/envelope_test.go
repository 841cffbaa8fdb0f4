package gqlrequest

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeDocument_JSONEnvelope(t *testing.T) {
	body := `{"query": "query Scans($id: Int!) { _service { sdl } }", "operationName": "Scans", "variables": {"id": 42}}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	doc, err := DecodeDocument(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.OperationName != "Scans" {
		t.Errorf("operation name = %q, want %q", doc.OperationName, "Scans")
	}
	if !strings.Contains(doc.Query, "_service") {
		t.Errorf("query not preserved: %q", doc.Query)
	}
	if got := doc.Variables["id"]; got != float64(42) {
		t.Errorf("variables[id] = %v (%T), want 42", got, got)
	}
}

func TestDecodeDocument_GraphQLContentType(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{ _service { sdl } }`))
	req.Header.Set("Content-Type", "application/graphql; charset=utf-8")

	doc, err := DecodeDocument(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Query != `{ _service { sdl } }` {
		t.Errorf("query = %q", doc.Query)
	}
	if doc.Variables != nil {
		t.Errorf("variables = %v, want nil", doc.Variables)
	}
}

func TestDecodeDocument_NullVariables(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"query": "{ _service { sdl } }", "variables": null}`))
	req.Header.Set("Content-Type", "application/json")

	doc, err := DecodeDocument(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Variables != nil {
		t.Errorf("variables = %v, want nil", doc.Variables)
	}
}

func TestDecodeDocument_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"query": `},
		{name: "empty body", body: ""},
		{name: "whitespace body", body: "   \n\t"},
		{name: "variables not an object", body: `{"query": "{ _service { sdl } }", "variables": [1, 2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if _, err := DecodeDocument(req); err == nil {
				t.Errorf("expected a parse error for body %q", tt.body)
			}
		})
	}
}

func TestDecodeDocument_NilRequest(t *testing.T) {
	if _, err := DecodeDocument(nil); err == nil {
		t.Error("expected an error for a nil request")
	}
}
