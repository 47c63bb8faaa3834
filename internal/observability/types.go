package observability

import (
	"context"
	"time"
)

// OperationInfo describes a named endpoint call, e.g. Dashboard.Statistic.
type OperationInfo struct {
	Service   string
	Operation string
	// TokenMode is true when the call authenticates with the API token
	// query parameter instead of the session bearer token.
	TokenMode bool
}

// RequestInfo describes one outbound HTTP request.
type RequestInfo struct {
	ID     string
	Method string
	URL    string
}

// RequestResult describes how a request finished.
type RequestResult struct {
	StatusCode int
	Duration   time.Duration
	Error      error
}

// Hooks receives callbacks around operations and requests.
type Hooks interface {
	OnOperationStart(ctx context.Context, op OperationInfo) context.Context
	OnOperationEnd(ctx context.Context, op OperationInfo, err error, duration time.Duration)
	OnRequestStart(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd(ctx context.Context, info RequestInfo, result RequestResult)
}

// NopHooks ignores every callback.
type NopHooks struct{}

func (NopHooks) OnOperationStart(ctx context.Context, _ OperationInfo) context.Context { return ctx }
func (NopHooks) OnOperationEnd(context.Context, OperationInfo, error, time.Duration)    {}
func (NopHooks) OnRequestStart(ctx context.Context, _ RequestInfo) context.Context     { return ctx }
func (NopHooks) OnRequestEnd(context.Context, RequestInfo, RequestResult)               {}
