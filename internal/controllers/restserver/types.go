package restserver

import "github.com/chrissnell/wxreport/internal/types"

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	JobID   string `json:"job_id,omitempty"`
}

// ParametersResponse lists what a report request may contain
type ParametersResponse struct {
	Parameters []types.Parameter       `json:"parameters"`
	Ranges     []types.RangePreset     `json:"ranges"`
	Averaging  []types.AveragingPreset `json:"averaging"`
}
