// Package aws traces requests made by aws-sdk-go clients, like the KMS client
// behind envelope.KMSKeyService, with opentracing.
package aws

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/kms"
	opentracing "github.com/opentracing/opentracing-go"
	dd_ext "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/ext"
)

var (
	// Starts a span and adds it to the request context.
	StartHandler = request.NamedHandler{
		Name: "opentracing.Start",
		Fn: func(r *request.Request) {
			_, ctx := opentracing.StartSpanFromContext(r.Context(), "client.request")
			r.SetContext(ctx)
		},
	}

	// Adds information about the request to the span.
	RequestInfoHandler = request.NamedHandler{
		Name: "opentracing.RequestInfo",
		Fn: func(r *request.Request) {
			span := opentracing.SpanFromContext(r.Context())
			if span == nil {
				return
			}
			span.SetTag("service.name", fmt.Sprintf("aws.%s", r.ClientInfo.ServiceName))
			span.SetTag("resource.name", r.Operation.Name)
			span.SetTag("http.method", r.Operation.HTTPMethod)
			span.SetTag("http.url", r.ClientInfo.Endpoint+r.Operation.HTTPPath)
			span.SetTag("out.host", r.ClientInfo.Endpoint)
			span.SetTag("aws.operation", r.Operation.Name)
		},
	}

	// KMSInfoHandler tags spans for KMS requests with the key they use. Key
	// material and ciphertext blobs are never tagged.
	KMSInfoHandler = request.NamedHandler{
		Name: "opentracing.KMS",
		Fn: func(r *request.Request) {
			if r.ClientInfo.ServiceName != kms.ServiceName {
				return
			}

			span := opentracing.SpanFromContext(r.Context())
			if span == nil {
				return
			}
			span.SetOperationName(fmt.Sprintf("kms.%s", r.Operation.Name))

			if keyId := kmsKeyId(r); keyId != "" {
				span.SetTag("aws.kms.key_id", keyId)
			}
		},
	}

	// Finishes the span.
	FinishHandler = request.NamedHandler{
		Name: "opentracing.Finish",
		Fn: func(r *request.Request) {
			span := opentracing.SpanFromContext(r.Context())
			if span == nil {
				return
			}
			span.SetTag("aws.retry_count", fmt.Sprintf("%d", r.RetryCount))

			if r.HTTPResponse != nil {
				span.SetTag("http.status_code", fmt.Sprintf("%d", r.HTTPResponse.StatusCode))
			}

			if r.Error != nil {
				span.SetTag(dd_ext.Error, r.Error)
				if _, ok := r.Error.(fmt.Formatter); ok {
					span.SetTag(dd_ext.ErrorStack, fmt.Sprintf("%+v", r.Error))
				}
				if err, ok := r.Error.(awserr.Error); ok {
					span.SetTag("aws.err.code", err.Code())
				}
			}

			span.Finish()
		},
	}
)

// WithTracing adds the tracing request handlers to h, which can be the
// Handlers of a session.Session or of a single client.
func WithTracing(h *request.Handlers) {
	// After adding these handlers, the "Send" handler list will look
	// something like:
	//
	//	opentracing.Start -> opentracing.RequestInfo -> opentracing.KMS -> core.ValidateReqSigHandler -> core.SendHandler
	h.Send.PushFrontNamed(KMSInfoHandler)
	h.Send.PushFrontNamed(RequestInfoHandler)
	h.Send.PushFrontNamed(StartHandler)

	h.Complete.PushBackNamed(FinishHandler)
}

// kmsKeyId returns the key id of a KMS request, if it names one.
func kmsKeyId(r *request.Request) string {
	switch v := r.Params.(type) {
	case *kms.GenerateDataKeyInput:
		return stringValue(v.KeyId)
	case *kms.DecryptInput:
		return stringValue(v.KeyId)
	case *kms.EncryptInput:
		return stringValue(v.KeyId)
	default:
		return ""
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
