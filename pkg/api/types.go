package api

import "github.com/pgrind/pgrind/pkg/trace"

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Bind          string
	Port          int
	APIKey        string // empty disables authentication
	DefaultFormat trace.CostFormat
}

// APIResponse is the standard envelope for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OpenTraceRequest is the body of POST /api/v1/traces.
type OpenTraceRequest struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
}

// TraceInfoResponse describes an open trace session.
type TraceInfoResponse struct {
	ID            string            `json:"id"`
	FunctionCount uint32            `json:"function_count"`
	TimeUnit      string            `json:"time_unit"`
	Runs          uint32            `json:"runs"`
	Summary       float64           `json:"summary"`
	Headers       map[string]string `json:"headers"`
}

// FunctionResponse is one decoded function record.
type FunctionResponse struct {
	Nr              uint32 `json:"nr"`
	Function        string `json:"function"`
	File            string `json:"file"`
	Line            uint32 `json:"line"`
	SelfCost        uint32 `json:"self_cost"`
	InclusiveCost   uint32 `json:"inclusive_cost"`
	InvocationCount uint32 `json:"invocation_count"`
	CalledFromCount uint32 `json:"called_from_count"`
	SubCallCount    uint32 `json:"sub_call_count"`

	FormattedSelfCost      string `json:"formatted_self_cost"`
	FormattedInclusiveCost string `json:"formatted_inclusive_cost"`
}

// CallResponse is one decoded call record.
type CallResponse struct {
	FunctionNr    uint32 `json:"function_nr"`
	Line          uint32 `json:"line"`
	CallCount     uint32 `json:"call_count"`
	Cost          uint32 `json:"cost"`
	FormattedCost string `json:"formatted_cost"`
}

// HotspotResponse is one row of a hotspot report.
type HotspotResponse struct {
	Nr              uint32 `json:"nr"`
	Function        string `json:"function"`
	File            string `json:"file"`
	Line            uint32 `json:"line"`
	SelfCost        uint32 `json:"self_cost"`
	InclusiveCost   uint32 `json:"inclusive_cost"`
	InvocationCount uint32 `json:"invocation_count"`

	FormattedSelfCost      string `json:"formatted_self_cost"`
	FormattedInclusiveCost string `json:"formatted_inclusive_cost"`
}

func newFunctionResponse(info *trace.FunctionInfo) FunctionResponse {
	return FunctionResponse{
		Nr:                     info.Nr,
		Function:               info.Function,
		File:                   info.File,
		Line:                   info.Line,
		SelfCost:               info.SelfCost,
		InclusiveCost:          info.InclusiveCost,
		InvocationCount:        info.InvocationCount,
		CalledFromCount:        info.CalledFromCount,
		SubCallCount:           info.SubCallCount,
		FormattedSelfCost:      info.FormattedSelfCost,
		FormattedInclusiveCost: info.FormattedInclusiveCost,
	}
}

func newCallResponse(call *trace.CallInfo) CallResponse {
	return CallResponse{
		FunctionNr:    call.FunctionNr,
		Line:          call.Line,
		CallCount:     call.CallCount,
		Cost:          call.Cost,
		FormattedCost: call.FormattedCost,
	}
}
