// Package docs embebe el documento OpenAPI servido en /docs.
package docs

import _ "embed"

// Swagger documento swagger.json.
//
//go:embed swagger.json
var Swagger []byte
