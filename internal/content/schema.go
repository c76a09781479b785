package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/vytor/lessonflow/internal/models"
)

//go:embed activity.schema.json
var activitySchemaJSON []byte

const activitySchemaURL = "schema://activity.json"

var activitySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var def any
	if err := json.Unmarshal(activitySchemaJSON, &def); err != nil {
		return nil, fmt.Errorf("parse activity schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(activitySchemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(activitySchemaURL)
})

// decodeActivity checks raw against the activity schema before decoding it.
// A document that fails the schema becomes an Activity carrying the reason in
// Invalid, with whatever id, title and type could be read, so one bad
// activity does not take down its lesson.
func decodeActivity(raw json.RawMessage) (models.Activity, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return models.Activity{}, err
	}

	schema, err := activitySchema()
	if err != nil {
		return models.Activity{}, err
	}
	if verr := schema.Validate(parsed); verr != nil {
		return invalidActivity(parsed, verr), nil
	}

	var doc activityDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Activity{}, err
	}
	return doc.toModel(), nil
}

func invalidActivity(parsed any, verr error) models.Activity {
	obj, _ := parsed.(map[string]any)
	str := func(k string) string {
		s, _ := obj[k].(string)
		return s
	}
	return models.Activity{
		ID:       str("id"),
		LessonID: str("lessonId"),
		Title:    str("title"),
		Variant:  models.Variant(strings.ToLower(str("type"))),
		Invalid:  schemaMessage(verr),
	}
}

// schemaMessage flattens a validation error to one line, dropping the
// header that names the schema.
func schemaMessage(err error) string {
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	if len(lines) > 1 {
		lines = lines[1:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(strings.TrimSpace(l), "- ")
	}
	return "schema: " + strings.Join(lines, "; ")
}
