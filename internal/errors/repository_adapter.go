package errors

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"
)

// transientCodes are DynamoDB error codes that indicate a temporary condition.
var transientCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"InternalServerError":                    true,
	"ServiceUnavailable":                     true,
	"TransactionInProgressException":         true,
}

// FromDynamoDBError converts a DynamoDB client failure into a StorageError.
// Callers must handle ConditionalCheckFailedException before calling this.
func FromDynamoDBError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var existing Classified
	if errors.As(err, &existing) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTransientStorage(operation, err)
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		if transientCodes[ae.ErrorCode()] || ae.ErrorFault() == smithy.FaultServer {
			return NewTransientStorage(operation, err)
		}
		return NewStorage(operation, err)
	}

	// Transport-level failures (DNS, connection reset) carry no API code.
	return NewTransientStorage(operation, err)
}
