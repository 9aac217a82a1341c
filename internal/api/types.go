package api

// ParaphraseRequest is the body of POST /paraphrase. Absent numeric fields
// take the defaults of modelhost.DefaultOptions.
type ParaphraseRequest struct {
	Text               string   `json:"text"`
	NumReturnSequences *int     `json:"num_return_sequences,omitempty"`
	NumBeams           *int     `json:"num_beams,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
}

type ParaphraseResponse struct {
	OriginalText string   `json:"original_text"`
	Paraphrases  []string `json:"paraphrases"`
	Device       string   `json:"device"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Device        string `json:"device"`
	Model         string `json:"model"`
	ModelLoaded   bool   `json:"model_loaded"`
	CUDAAvailable bool   `json:"cuda_available"`
}

// ErrorResponse is returned for every failed request. RequestID is only set
// on server errors so the log line can be found.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}
