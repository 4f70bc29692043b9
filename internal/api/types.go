package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is returned when a video was produced.
type GenerateResponse struct {
	VideoURL  string `json:"videoUrl"`
	SessionID string `json:"sessionId"`
	Frames    int    `json:"frames,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	ElapsedMS int64  `json:"elapsedMs,omitempty"`
}

// ErrorResponse carries a short caller-facing message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// RenderProfile summarizes the capture and encode settings in effect.
type RenderProfile struct {
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	FPS             int    `json:"fps"`
	DurationSeconds int    `json:"durationSeconds"`
	Frames          int    `json:"frames"`
	ImageFormat     string `json:"imageFormat"`
	Pacing          string `json:"pacing"`
	Codec           string `json:"codec"`
	CRF             int    `json:"crf"`
}

// ServerStatus aggregates runtime information for GET /api/status.
type ServerStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	StartedAt    string             `json:"startedAt,omitempty"`
	LockFilePath string             `json:"lockFilePath,omitempty"`
	WorkDir      string             `json:"workDir"`
	PublicDir    string             `json:"publicDir"`
	Model        string             `json:"model"`
	Render       RenderProfile      `json:"render"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
