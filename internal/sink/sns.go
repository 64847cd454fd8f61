package sink

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// snsAPI is the slice of the generated SNS client this package depends
// on, narrowed for testability.
type snsAPI interface {
	PublishBatch(ctx context.Context, in *sns.PublishBatchInput, optFns ...func(*sns.Options)) (*sns.PublishBatchOutput, error)
}

// SNS adapts AWS SNS's native PublishBatch operation to the Client
// contract. Construct with NewSNS once an aws.Config is available (see
// internal/cmd/server for the usual config.LoadDefaultConfig wiring); topic here
// is always the ARN passed to PublishBatch, independent of whatever
// topic string the caller names logically.
type SNS struct {
	api snsAPI
}

// NewSNS wraps an SNS API client.
func NewSNS(api *sns.Client) *SNS { return &SNS{api: api} }

func (s *SNS) PublishBatch(ctx context.Context, topic string, entries []Entry) (BatchResult, error) {
	reqEntries := make([]types.PublishBatchRequestEntry, len(entries))
	for i, e := range entries {
		id, msg := e.ID, e.Message
		reqEntries[i] = types.PublishBatchRequestEntry{Id: &id, Message: &msg}
	}

	out, err := s.api.PublishBatch(ctx, &sns.PublishBatchInput{
		TopicArn:                   &topic,
		PublishBatchRequestEntries: reqEntries,
	})
	if err != nil {
		return BatchResult{}, classify(err)
	}

	result := BatchResult{
		Successful: make([]SuccessEntry, 0, len(out.Successful)),
		Failed:     make([]FailedEntry, 0, len(out.Failed)),
	}
	for _, ok := range out.Successful {
		result.Successful = append(result.Successful, SuccessEntry{ID: deref(ok.Id), MessageID: deref(ok.MessageId)})
	}
	for _, bad := range out.Failed {
		result.Failed = append(result.Failed, FailedEntry{ID: deref(bad.Id), Code: deref(bad.Code), Message: deref(bad.Message)})
	}
	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// classify turns an SNS client error into a *sink.Error with the Kind
// the resiliency policy switches on.
func classify(err error) error {
	var throttled *types.ThrottledException
	if errors.As(err, &throttled) {
		return &Error{Kind: KindThrottled, Code: "Throttled", Message: throttled.ErrorMessage(), Cause: err}
	}
	var internal *types.InternalErrorException
	if errors.As(err, &internal) {
		return &Error{Kind: KindInternal, Code: "InternalError", Message: internal.ErrorMessage(), Cause: err}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		code, msg := "", err.Error()
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			code, msg = apiErr.ErrorCode(), apiErr.ErrorMessage()
		}
		return &Error{Kind: KindTransport, StatusCode: status, Code: code, Message: msg, Cause: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: KindPermanent, Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage(), Cause: err}
	}
	return &Error{Kind: KindPermanent, Message: err.Error(), Cause: err}
}
