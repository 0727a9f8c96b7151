// Package aggregator defines the contract for talking to the third-party
// insurance aggregation backend. The concrete HTTP implementation lives in
// the client subpackage.
package aggregator

import "context"

// Transport performs JSON calls against the aggregation backend.
// orderHash scopes a call to a quoting session; pass "" for unscoped calls.
// Non-2xx responses are returned as *client.APIError.
type Transport interface {
	Get(ctx context.Context, path, orderHash string, out any) error
	Post(ctx context.Context, path, orderHash string, body, out any) error
}
