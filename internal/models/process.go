package models

// StatusProcessing marks an upload that was accepted and queued for
// background processing.
const StatusProcessing = "processing"

// ProcessResult is the synchronous processing outcome returned by
// POST /process and by text-only POST /process-file.
type ProcessResult struct {
	Result  string `json:"result"`
	SavedTo string `json:"saved_to"`
	Message string `json:"message"`
}

// Accepted is returned when a file was queued for background processing.
type Accepted struct {
	Message   string `json:"message"`
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	JobID     string `json:"job_id"`
}

// ProcessResponse is the client-side view of any intake response. It covers
// both the synchronous shape and the asynchronous acceptance shape.
type ProcessResponse struct {
	Result    *string `json:"result,omitempty"`
	Message   *string `json:"message,omitempty"`
	SavedTo   *string `json:"saved_to,omitempty"`
	Error     *string `json:"error,omitempty"`
	Status    *string `json:"status,omitempty"`
	Filename  *string `json:"filename,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
	JobID     *string `json:"job_id,omitempty"`
}

// IsSuccess reports the legacy synchronous success contract.
func (r *ProcessResponse) IsSuccess() bool {
	return r != nil && r.Result != nil && r.SavedTo != nil && r.Error == nil
}

// IsProcessing reports the asynchronous acceptance contract.
func (r *ProcessResponse) IsProcessing() bool {
	return r != nil && r.Status != nil && *r.Status == StatusProcessing
}

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Service   string `json:"service,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// TimestampLayout renders UTC instants with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
