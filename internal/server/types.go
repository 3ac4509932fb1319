package server

// ReadResponse is the JSON body of GET /read.
type ReadResponse struct {
	// N is the offset that was read.
	N int64 `json:"n"`
	// Result holds the digits of F(N), truncated to the response size.
	Result string `json:"result,omitempty"`
	Digits int    `json:"digits"`
	// Duration is the read time. A cached response keeps its original one.
	Duration string `json:"duration"`
	// Session identifies the device session that produced the digits.
	Session string `json:"session,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
}

// MeasureResponse is the JSON body of GET /measure.
type MeasureResponse struct {
	N           int64  `json:"n"`
	Mode        int    `json:"mode"`
	Nanoseconds int64  `json:"ns"`
	Duration    string `json:"duration"`
}

// ErrorResponse represents the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
}

// ParseError is a query parameter error with the status to answer with.
type ParseError struct {
	Message    string
	StatusCode int
}

func (e ParseError) Error() string { return e.Message }
