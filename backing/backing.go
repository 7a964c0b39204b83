// Package backing provides Persisters for concrete storage systems. Each one
// speaks in its native ids and data; namespacing, key validation and
// serialization belong to the Store layered on top.
package backing

import (
	"github.com/mplewis/layerkv"
	"github.com/mplewis/layerkv/internal/logging"
)

var logger = logging.For("backing")

// Compile-time checks that every backing satisfies the full contract.
var (
	_ layerkv.Persister[string, []byte]   = (*Memory[string, []byte])(nil)
	_ layerkv.Persister[string, []byte]   = (*File)(nil)
	_ layerkv.Persister[string, []byte]   = (*Bolt)(nil)
	_ layerkv.Persister[string, []byte]   = (*S3)(nil)
	_ layerkv.Persister[string, []byte]   = (*Redis)(nil)
	_ layerkv.Persister[string, Document] = (*Dynamo)(nil)
	_ layerkv.Persister[string, string]   = (*ExplicitKeys)(nil)
)
