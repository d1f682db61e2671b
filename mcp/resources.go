package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lvillar/proposalpdf/schema"
)

const schemaScheme = "schema://"

// Schemas lists and serves definitions. *schema.Provider implements it.
type Schemas interface {
	Kinds() []schema.Kind
	SchemaFor(kind schema.Kind) (*schema.Definition, error)
}

// RegisterSchemaResources adds one schema://<kind> resource per known kind.
func RegisterSchemaResources(s *Server, schemas Schemas) {
	for _, kind := range schemas.Kinds() {
		s.AddResource(Resource{
			URI:         schemaScheme + string(kind),
			Name:        fmt.Sprintf("%s schema", kind),
			Description: fmt.Sprintf("Field groups of the %s data document, in render order.", kind),
			MIMEType:    "application/json",
			Handler:     schemaResource(schemas),
		})
	}
}

func schemaResource(schemas Schemas) ResourceHandler {
	return func(_ context.Context, uri string) ([]ResourceContent, error) {
		kind := schema.Kind(strings.TrimPrefix(uri, schemaScheme))
		def, err := schemas.SchemaFor(kind)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding schema: %w", err)
		}
		return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
	}
}
