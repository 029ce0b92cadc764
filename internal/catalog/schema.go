package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wittefeng/juan-cli/internal/clierr"
)

//go:embed schema/templates.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// Issue is one schema violation.
type Issue struct {
	Path    string // instance location, e.g. "/0/npmName"
	Message string
	Keyword string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("templates.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("templates.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Parse validates a JSON or YAML template list and decodes it. Schema
// violations are returned as a ValidationFailed error whose remediation
// lists every issue.
func Parse(data []byte) ([]Template, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, clierr.Wrap(err, clierr.ValidationFailed, "parsing template list")
	}
	if raw == nil {
		return nil, nil
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting template list to JSON: %w", err)
	}

	issues, err := validate(jsonData)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		steps := make([]string, len(issues))
		for i, issue := range issues {
			steps[i] = issue.String()
		}
		return nil, clierr.New(clierr.ValidationFailed,
			fmt.Sprintf("template list failed validation with %d issue(s)", len(issues)), steps...)
	}

	var templates []Template
	if err := json.Unmarshal(jsonData, &templates); err != nil {
		return nil, clierr.Wrap(err, clierr.ValidationFailed, "decoding template list")
	}
	for i := range templates {
		if templates[i].Type == "" {
			templates[i].Type = TypeNormal
		}
	}
	return templates, nil
}

func validate(jsonData []byte) ([]Issue, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	var issues []Issue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return []Issue{{Message: ve.Error()}}, nil
	}
	return issues, nil
}

// collectIssues keeps the leaves of the error tree.
func collectIssues(ve *jsonschema.ValidationError, issues *[]Issue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}

	keyword := ""
	if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
		keyword = kw[len(kw)-1]
	}
	if keyword == "" || keyword == "$ref" || keyword == "allOf" {
		return
	}
	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	*issues = append(*issues, Issue{
		Path:    path,
		Message: ve.ErrorKind.LocalizedString(printer),
		Keyword: keyword,
	})
}
