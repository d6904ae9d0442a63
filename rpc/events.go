package rpc

import (
	"paycore/core/events"
	"paycore/core/types"
)

// eventAttributes unwraps the attribute map every engine event carries.
func eventAttributes(e events.Event) map[string]string {
	carrier, ok := e.(interface{ Event() *types.Event })
	if !ok {
		return nil
	}
	evt := carrier.Event()
	if evt == nil {
		return nil
	}
	return evt.Attributes
}
