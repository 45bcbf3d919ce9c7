package dto

import (
	"github.com/invopop/jsonschema"
)

var requests = map[string]any{
	"transition": TransitionRequest{},
	"payment":    PaymentRequest{},
	"stock":      StockRequest{},
	"ownership":  OwnershipRequest{},
	"invitation": InvitationRequest{},
}

// Schema returns the JSON Schema of a named request body.
func Schema(name string) (*jsonschema.Schema, bool) {
	v, ok := requests[name]
	if !ok {
		return nil, false
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(v), true
}
