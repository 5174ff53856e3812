package xmlexport

import (
	"fmt"

	"github.com/joshuapare/hivexml/pkg/types"
)

// InvariantError reports a value callback invoked with a type tag the routed
// shape cannot represent. That means the traversal engine broke its dispatch
// contract; the export aborts rather than emit semantically wrong XML, but
// the caller gets a typed error instead of a process abort.
type InvariantError struct {
	Shape string        // the shape handler that was invoked
	Type  types.RegType // the incompatible type tag it received
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("xmlexport: %s handler received incompatible type %s", e.Shape, e.Type)
}
