package events

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed command.schema.json
var commandSchemaJSON []byte

var (
	commandSchemaOnce sync.Once
	commandSchema     *gojsonschema.Schema
	commandSchemaErr  error
)

func loadCommandSchema() (*gojsonschema.Schema, error) {
	commandSchemaOnce.Do(func() {
		commandSchema, commandSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(commandSchemaJSON))
	})
	return commandSchema, commandSchemaErr
}

func validateCommand(data []byte) error {
	schema, err := loadCommandSchema()
	if err != nil {
		return fmt.Errorf("failed to load command schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidMessage, strings.Join(details, "; "))
	}
	return nil
}
