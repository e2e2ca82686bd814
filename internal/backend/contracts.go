package backend

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaBase anchors relative $refs between the embedded schemas.
const schemaBase = "https://rentr.invalid/schemas/"

var (
	contractsOnce sync.Once
	contracts     map[string]*jsonschema.Schema
	contractsErr  error
)

// ContractError reports an outgoing body that does not match the request
// contract of its endpoint. It is a client bug and never worth retrying.
type ContractError struct {
	Endpoint string
	Err      error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("request to %s violates contract: %v", e.Endpoint, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

// Retryable reports false: resending the same body fails the same way.
func (e *ContractError) Retryable() bool { return false }

func loadContracts() (map[string]*jsonschema.Schema, error) {
	contractsOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true

		entries, err := fs.Glob(schemaFS, "schemas/*.json")
		if err != nil {
			contractsErr = err
			return
		}
		for _, path := range entries {
			data, err := schemaFS.ReadFile(path)
			if err != nil {
				contractsErr = err
				return
			}
			url := schemaBase + strings.TrimPrefix(path, "schemas/")
			if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
				contractsErr = fmt.Errorf("failed to add schema %s: %w", path, err)
				return
			}
		}

		compiled := make(map[string]*jsonschema.Schema, len(entries))
		for _, path := range entries {
			name := strings.TrimSuffix(strings.TrimPrefix(path, "schemas/"), ".json")
			schema, err := compiler.Compile(schemaBase + name + ".json")
			if err != nil {
				contractsErr = fmt.Errorf("failed to compile schema %s: %w", path, err)
				return
			}
			compiled[name] = schema
		}
		contracts = compiled
	})
	return contracts, contractsErr
}

// checkContract validates body, already decoded into generic JSON values,
// against the contract named after endpoint.
func checkContract(endpoint string, body any) error {
	schemas, err := loadContracts()
	if err != nil {
		return err
	}
	schema, ok := schemas[endpoint]
	if !ok {
		return fmt.Errorf("no contract for endpoint %s", endpoint)
	}
	if err := schema.Validate(body); err != nil {
		return &ContractError{Endpoint: endpoint, Err: err}
	}
	return nil
}
