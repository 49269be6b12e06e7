// Package openapi describes the registered API routes as an OpenAPI 3.0
// document.
package openapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// SchemaSource supplies component schemas keyed by definition name.
type SchemaSource interface {
	OpenAPISchemas() (map[string]interface{}, error)
}

// Generator builds the document from the live route table.
type Generator struct {
	title   string
	version string
	baseURL string
	prefix  string
	routes  func() []*echo.Route
	schemas SchemaSource
	bodies  map[string]string
}

// NewGenerator creates a generator for routes under prefix. bodies maps
// "METHOD /path" to the schema definition that validates its request body.
func NewGenerator(title, version, baseURL, prefix string, routes func() []*echo.Route, schemas SchemaSource, bodies map[string]string) *Generator {
	return &Generator{
		title:   title,
		version: version,
		baseURL: baseURL,
		prefix:  prefix,
		routes:  routes,
		schemas: schemas,
		bodies:  bodies,
	}
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() (map[string]interface{}, error) {
	components := map[string]interface{}{}
	if g.schemas != nil {
		s, err := g.schemas.OpenAPISchemas()
		if err != nil {
			return nil, err
		}
		components = s
	}

	paths := make(map[string]interface{})
	for _, r := range g.sortedRoutes() {
		p := toOpenAPIPath(r.Path)
		item, ok := paths[p].(map[string]interface{})
		if !ok {
			item = map[string]interface{}{}
			paths[p] = item
		}

		op := map[string]interface{}{
			"summary":     r.Method + " " + p,
			"operationId": operationID(r),
			"tags":        []string{tag(strings.TrimPrefix(r.Path, g.prefix))},
			"responses":   responses(r.Method),
		}
		if params := pathParameters(r.Path); len(params) > 0 {
			op["parameters"] = params
		}
		if def, ok := g.bodies[r.Method+" "+r.Path]; ok {
			op["requestBody"] = buildRequestBody(def)
		}
		item[strings.ToLower(r.Method)] = op
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": components,
			"securitySchemes": map[string]interface{}{
				"bearerAuth": map[string]interface{}{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
		},
		"security": []map[string][]string{{"bearerAuth": {}}},
	}, nil
}

func (g *Generator) sortedRoutes() []*echo.Route {
	var out []*echo.Route
	for _, r := range g.routes() {
		if !strings.HasPrefix(r.Path, g.prefix) || r.Method == echo.RouteNotFound {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// toOpenAPIPath rewrites echo's ":id" segments as "{id}".
func toOpenAPIPath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}

func pathParameters(p string) []map[string]interface{} {
	var params []map[string]interface{}
	for _, s := range strings.Split(p, "/") {
		if !strings.HasPrefix(s, ":") {
			continue
		}
		params = append(params, map[string]interface{}{
			"name":     s[1:],
			"in":       "path",
			"required": true,
			"schema":   map[string]string{"type": "string"},
		})
	}
	return params
}

// operationID turns a handler name such as
// "example.com/x/admission.(*Handler).GetAdmission-fm" into
// "admission.GetAdmission".
func operationID(r *echo.Route) string {
	name := strings.TrimSuffix(r.Name, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Replace(name, ".(*Handler)", "", 1)
	if name == "" {
		return strings.ToLower(r.Method) + strings.ReplaceAll(r.Path, "/", "_")
	}
	return name
}

func tag(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i]
	}
	return p
}

func buildRequestBody(def string) map[string]interface{} {
	return map[string]interface{}{
		"required": true,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]string{"$ref": "#/components/schemas/" + def},
			},
		},
	}
}

func responses(method string) map[string]interface{} {
	success := "200"
	if method == http.MethodPost {
		success = "2XX"
	}
	return map[string]interface{}{
		success: map[string]interface{}{"description": "Success"},
		"400":   map[string]interface{}{"description": "Invalid request"},
		"401":   map[string]interface{}{"description": "Authentication required"},
		"403":   map[string]interface{}{"description": "Insufficient role"},
	}
}

// RegisterRoutes serves the document at /openapi.json on the API group.
func (g *Generator) RegisterRoutes(api *echo.Group, _ *echo.Group) {
	api.GET("/openapi.json", func(c echo.Context) error {
		spec, err := g.GenerateSpec()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, spec)
	})
}
