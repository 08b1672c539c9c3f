// Package kit provides the endpoint abstraction shared by the module's
// transports: a business operation is an Endpoint, and transport
// adapters (MCP, HTTP handlers) decode requests and invoke it.
package kit

import "context"

// Endpoint is a single business operation, transport-agnostic.
type Endpoint func(ctx context.Context, request any) (any, error)
