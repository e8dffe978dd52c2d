package rendering

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
	"maragu.dev/gomponents"
)

// Renderer defines the contract for rendering view components.
type Renderer interface {
	// RenderComponent renders a component to a slice of bytes. Useful for htmx fragments.
	RenderComponent(ctx context.Context, component gomponents.Node) ([]byte, error)

	// RenderPage writes a full HTTP response.
	RenderPage(c echo.Context, status int, component gomponents.Node) error
}

// NodeRenderer renders gomponents nodes. It also satisfies echo.Renderer so
// handlers may call c.Render(status, name, node).
type NodeRenderer struct{}

var (
	_ Renderer      = (*NodeRenderer)(nil)
	_ echo.Renderer = (*NodeRenderer)(nil)
)

func NewNodeRenderer() *NodeRenderer {
	return &NodeRenderer{}
}

func (r *NodeRenderer) RenderComponent(ctx context.Context, component gomponents.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := component.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render component to bytes: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPage buffers the component first so a render failure can still become
// a proper error response.
func (r *NodeRenderer) RenderPage(c echo.Context, status int, component gomponents.Node) error {
	body, err := r.RenderComponent(c.Request().Context(), component)
	if err != nil {
		return err
	}
	return c.HTMLBlob(status, body)
}

// Render implements echo.Renderer. data must be a gomponents.Node.
func (r *NodeRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	node, ok := data.(gomponents.Node)
	if !ok {
		return fmt.Errorf("unsupported component type %T for %q: must be a gomponents.Node", data, name)
	}
	return node.Render(w)
}
