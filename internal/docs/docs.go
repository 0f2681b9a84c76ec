// Package docs embeds the OpenAPI description of the API.
package docs

import (
	_ "embed"
	"encoding/json"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPI []byte

var (
	jsonOnce sync.Once
	jsonDoc  []byte
	jsonErr  error
)

// YAML returns the document as written.
func YAML() []byte {
	return openAPI
}

// JSON returns the document converted to JSON. The conversion runs once.
func JSON() ([]byte, error) {
	jsonOnce.Do(func() {
		var doc map[string]interface{}
		if jsonErr = yaml.Unmarshal(openAPI, &doc); jsonErr != nil {
			return
		}
		jsonDoc, jsonErr = json.Marshal(doc)
	})
	return jsonDoc, jsonErr
}
