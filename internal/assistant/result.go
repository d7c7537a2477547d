package assistant

import "encoding/json"

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Source records where processed content came from.
type Source struct {
	Type     string `json:"type"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
	Title    string `json:"title,omitempty"`
}

// ProcessingResult carries both summary and key points on success and only a
// message on error.
type ProcessingResult struct {
	Status    Status   `json:"status"`
	Summary   string   `json:"summary,omitempty"`
	KeyPoints []string `json:"key_points,omitempty"`
	Message   string   `json:"message,omitempty"`
	Source    *Source  `json:"source,omitempty"`
}

func (r ProcessingResult) OK() bool { return r.Status == StatusSuccess }

// MarshalJSON always emits summary and key_points for a success, even when
// the model produced no points.
func (r ProcessingResult) MarshalJSON() ([]byte, error) {
	if r.Status != StatusSuccess {
		return json.Marshal(struct {
			Status  Status `json:"status"`
			Message string `json:"message"`
		}{r.Status, r.Message})
	}
	points := r.KeyPoints
	if points == nil {
		points = []string{}
	}
	return json.Marshal(struct {
		Status    Status   `json:"status"`
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"key_points"`
		Source    *Source  `json:"source,omitempty"`
	}{r.Status, r.Summary, points, r.Source})
}

type AnswerResult struct {
	Status  Status `json:"status"`
	Answer  string `json:"answer,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r AnswerResult) OK() bool { return r.Status == StatusSuccess }

func processingFailure(err error) ProcessingResult {
	return ProcessingResult{Status: StatusError, Message: err.Error()}
}

func answerFailure(err error) AnswerResult {
	return AnswerResult{Status: StatusError, Message: err.Error()}
}
