package adapter

import (
	"context"

	"modena-payment-service/internal/domain/model"
)

// ProcessorClient talks to the Modena financing API. The endpoint argument is
// the variant's configured application endpoint, so gateway variants stay
// plain data instead of subtypes.
type ProcessorClient interface {
	SubmitApplication(ctx context.Context, endpoint model.Endpoint, req *model.ProcessorRequest) (*model.ApplicationResult, error)
	ApplicationStatus(ctx context.Context, applicationID string) (model.ApplicationStatus, error)
	// ParseCallback decodes an inbound callback body. The result is untrusted.
	ParseCallback(body []byte) (*model.ProcessorResponse, error)
}
