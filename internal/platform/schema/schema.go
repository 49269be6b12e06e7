// Package schema checks JSON request bodies against embedded CUE definitions
// before they reach the handlers.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/openapi"
	"github.com/labstack/echo/v4"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("request body does not match schema")

// ValidationError lists the violations found in one body.
type ValidationError struct {
	Definition string
	Problems   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Definition, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validator holds the compiled definitions.
type Validator struct {
	ctx  *cue.Context
	root cue.Value
}

// New compiles every embedded .cue file into a single value.
func New() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}

	var src bytes.Buffer
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}
		src.Write(content)
		src.WriteByte('\n')
	}

	ctx := cuecontext.New()
	root := ctx.CompileBytes(src.Bytes(), cue.Filename("schemas.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schemas: %w", err)
	}
	return &Validator{ctx: ctx, root: root}, nil
}

// Definitions returns the names of all top-level definitions, without the
// leading '#'.
func (v *Validator) Definitions() []string {
	var names []string
	it, err := v.root.Fields(cue.Definitions(true))
	if err != nil {
		return nil
	}
	for it.Next() {
		if sel := it.Selector(); sel.IsDefinition() {
			names = append(names, strings.TrimPrefix(sel.String(), "#"))
		}
	}
	sort.Strings(names)
	return names
}

// OpenAPISchemas renders every definition as an OpenAPI 3.0 schema object,
// keyed by definition name.
func (v *Validator) OpenAPISchemas() (map[string]interface{}, error) {
	b, err := openapi.Gen(v.root, &openapi.Config{
		Info: map[string]string{"title": "schemas", "version": "1"},
	})
	if err != nil {
		return nil, fmt.Errorf("generate openapi schemas: %w", err)
	}
	var doc struct {
		Components struct {
			Schemas map[string]interface{} `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi schemas: %w", err)
	}
	return doc.Components.Schemas, nil
}

// Validate checks a JSON document against #def. Missing required fields,
// unknown fields and out-of-range values are all reported.
func (v *Validator) Validate(def string, body []byte) error {
	schema := v.root.LookupPath(cue.ParsePath("#" + def))
	if !schema.Exists() {
		return fmt.Errorf("unknown schema definition %q", def)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return &ValidationError{Definition: def, Problems: []string{"malformed JSON: " + err.Error()}}
	}

	value := v.ctx.Encode(data)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Definition: def, Problems: problems(err)}
	}
	return nil
}

func problems(err error) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if p := e.Path(); len(p) > 0 {
			msg = strings.Join(p, ".") + ": " + msg
		}
		if !seen[msg] {
			seen[msg] = true
			out = append(out, msg)
		}
	}
	return out
}

// Body returns middleware that validates the request body against #def and
// restores it for binding.
func (v *Validator) Body(def string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			if err := v.Validate(def, body); err != nil {
				var ve *ValidationError
				if errors.As(err, &ve) {
					return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
						"error":      "invalid request body",
						"definition": ve.Definition,
						"problems":   ve.Problems,
					})
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			return next(c)
		}
	}
}
