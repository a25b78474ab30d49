package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

const maxReportedBody = 200

// OpenAPIValidator checks JSON API traffic against api/openapi/openapi.yaml.
// Pages and form actions are not part of the document and are never checked.
type OpenAPIValidator struct {
	router routers.Router
}

// LoadOpenAPIValidator loads and validates the document at path.
// Use this in TestMain where *testing.T is not available.
func LoadOpenAPIValidator(path string) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load OpenAPI document %s: %w", path, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate OpenAPI document: %w", err)
	}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create OpenAPI router: %w", err)
	}
	return &OpenAPIValidator{router: router}, nil
}

// isAPI reports whether path belongs to the JSON API.
func isAPI(path string) bool {
	return path == "/version" || (strings.HasPrefix(path, "/api/") && path != "/api/openapi.yaml")
}

// Validate checks the request body (when given) and the response of one
// API call. Every API route must be documented. The response body is
// consumed and restored.
func (v *OpenAPIValidator) Validate(t *testing.T, req *http.Request, reqBody []byte, resp *http.Response) {
	t.Helper()

	if !isAPI(req.URL.Path) {
		return
	}

	routeReq, err := http.NewRequest(req.Method, req.URL.Path, nil)
	if err != nil {
		t.Errorf("create route request: %v", err)
		return
	}
	route, pathParams, err := v.router.FindRoute(routeReq)
	if err != nil {
		t.Errorf("OpenAPI: %s %s is not documented: %v", req.Method, req.URL.Path, err)
		return
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}

	if reqBody != nil {
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
		if err := openapi3filter.ValidateRequest(context.Background(), input); err != nil {
			t.Errorf("OpenAPI request validation failed for %s %s:\n%s", req.Method, req.URL.Path, err)
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Errorf("read response body: %v", err)
		return
	}
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	err = openapi3filter.ValidateResponse(context.Background(), &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 resp.StatusCode,
		Header:                 resp.Header,
		Body:                   io.NopCloser(bytes.NewReader(respBody)),
		Options: &openapi3filter.Options{
			MultiError:            true,
			IncludeResponseStatus: true,
		},
	})
	if err != nil {
		t.Errorf("OpenAPI response validation failed for %s %s (status %d):\n%s\nResponse body: %s",
			req.Method, req.URL.Path, resp.StatusCode, describe(err), truncate(respBody))
	}
}

// describe flattens a multi-error into one line per failure.
func describe(err error) string {
	var multi openapi3.MultiError
	if !errors.As(err, &multi) {
		return err.Error()
	}
	lines := make([]string, 0, len(multi))
	for _, e := range multi {
		lines = append(lines, "- "+e.Error())
	}
	return strings.Join(lines, "\n")
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxReportedBody {
		return s[:maxReportedBody] + "..."
	}
	return s
}
