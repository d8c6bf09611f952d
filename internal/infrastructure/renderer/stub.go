package renderer

import (
	"context"

	appdocument "github.com/recyclemart/backend/internal/application/document"
)

// Ensure StubRenderer implements Renderer
var _ appdocument.Renderer = (*StubRenderer)(nil)

// StubRenderer returns the rendered HTML bytes instead of a PDF. Use for
// development and tests when no Chrome instance is available.
type StubRenderer struct{}

// NewStubRenderer creates a new StubRenderer
func NewStubRenderer() *StubRenderer {
	return &StubRenderer{}
}

// RenderContract fills the contract template and returns the HTML as bytes
func (r *StubRenderer) RenderContract(ctx context.Context, data appdocument.ContractData) ([]byte, error) {
	html, err := renderHTML(data)
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}
