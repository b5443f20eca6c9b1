// Package openapi builds the OpenAPI 3.1 document served at /api/openapi.json.
// Only the subset of the object model the service describes is modelled.
package openapi

import (
	"encoding/json"
	"maps"
	"net/http"
)

const version = "3.1.0"

// Document is the root OpenAPI object.
type Document struct {
	OpenAPI    string               `json:"openapi"`
	Info       Info                 `json:"info"`
	Servers    []Server             `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components Components           `json:"components"`
}

// New returns a Document carrying the shared Error schema and the error
// responses referenced by every operation.
func New(title, apiVersion, description string, servers ...string) *Document {
	d := &Document{
		OpenAPI: version,
		Info:    Info{Title: title, Version: apiVersion, Description: description},
		Paths:   map[string]*PathItem{},
		Components: Components{
			Schemas: map[string]*Schema{
				"Error": {
					Type:       "object",
					Required:   []string{"error"},
					Properties: map[string]*Schema{"error": {Type: "string"}},
				},
			},
			Responses: map[string]*Response{
				"BadRequest":      errorResponse("Invalid request"),
				"NotFound":        errorResponse("Case not found"),
				"TooManyRequests": errorResponse("Rate limit exceeded"),
				"TooLarge":        errorResponse("Request body too large"),
				"BadGateway":      errorResponse("Classifier or mail transport failed"),
			},
		},
	}
	for _, url := range servers {
		d.Servers = append(d.Servers, Server{URL: url})
	}
	return d
}

// AddSchemas merges schemas into the component schemas.
func (d *Document) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(d.Components.Schemas, schemas)
}

// Handler serializes d once and returns a handler serving the bytes.
func (d *Document) Handler() (http.HandlerFunc, error) {
	body, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(body)
	}, nil
}

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content:     map[string]MediaType{"application/json": {Schema: Ref("Error")}},
	}
}
