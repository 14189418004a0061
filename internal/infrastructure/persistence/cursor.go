package persistence

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperrors "github-ddb-backend/internal/errors"
)

// EncodeCursor turns a page's last evaluated key into an opaque token.
// A nil key encodes to the empty string.
func EncodeCursor(lastEvaluated map[string]string) string {
	if len(lastEvaluated) == 0 {
		return ""
	}
	data, err := json.Marshal(lastEvaluated)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor reverses EncodeCursor. The empty token decodes to nil.
func DecodeCursor(cursor string) (map[string]string, error) {
	if cursor == "" {
		return nil, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, apperrors.NewValidation("cursor", "malformed pagination cursor")
	}

	var key map[string]string
	if err := json.Unmarshal(data, &key); err != nil || len(key) == 0 {
		return nil, apperrors.NewValidation("cursor", "malformed pagination cursor")
	}
	if _, ok := key[AttrPK]; !ok {
		return nil, apperrors.NewValidation("cursor", "pagination cursor is missing the table key")
	}
	return key, nil
}

// toAttributeKey converts a continuation key to DynamoDB form.
func toAttributeKey(key map[string]string) map[string]types.AttributeValue {
	if len(key) == 0 {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(key))
	for k, v := range key {
		out[k] = &types.AttributeValueMemberS{Value: v}
	}
	return out
}

// fromAttributeKey keeps the string attributes of a DynamoDB key. Every key
// attribute of the table is a string.
func fromAttributeKey(key map[string]types.AttributeValue) map[string]string {
	if len(key) == 0 {
		return nil
	}
	out := make(map[string]string, len(key))
	for k, v := range key {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			out[k] = s.Value
		}
	}
	return out
}
