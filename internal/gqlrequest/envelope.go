package gqlrequest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Document is the structured form of an inbound GraphQL request: operation
// text, optional variables, optional operation name.
type Document struct {
	Query         string
	OperationName string
	Variables     map[string]interface{}
}

// DecodeDocument extracts a Document from an HTTP POST body. A body that is
// not a value the request format accepts is a parse error; the caller rejects
// the request without starting execution.
func DecodeDocument(r *http.Request) (Document, error) {
	if r == nil || r.Body == nil {
		return Document{}, fmt.Errorf("request has no body")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read request body: %w", err)
	}

	contentType := r.Header.Get("Content-Type")
	mediaType, _, parseErr := mime.ParseMediaType(contentType)
	if parseErr != nil || mediaType == "" {
		mediaType = strings.TrimSpace(contentType)
	}

	if mediaType == "application/graphql" {
		return Document{Query: string(body)}, nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("request body is empty")
	}

	var payload struct {
		Query         string          `json:"query"`
		OperationName string          `json:"operationName"`
		Variables     json.RawMessage `json:"variables"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return Document{}, fmt.Errorf("invalid GraphQL request body: %w", err)
	}

	doc := Document{
		Query:         payload.Query,
		OperationName: payload.OperationName,
	}
	if len(payload.Variables) > 0 && !bytes.Equal(bytes.TrimSpace(payload.Variables), []byte("null")) {
		if err := json.Unmarshal(payload.Variables, &doc.Variables); err != nil {
			return Document{}, fmt.Errorf("invalid GraphQL variables: %w", err)
		}
	}
	return doc, nil
}
