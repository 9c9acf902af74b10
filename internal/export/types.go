package export

// EDLRequest asks for an edit decision list of a session timeline.
type EDLRequest struct {
	Title     string  `json:"title"`
	FrameRate float64 `json:"frameRate"`
	OutputDir string  `json:"outputDir,omitempty"`
	Upload    bool    `json:"upload,omitempty"`
}

type EDLResponse struct {
	Status      string `json:"status"`
	Format      string `json:"format"`
	OutputPath  string `json:"outputPath,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	ClipCount   int    `json:"clipCount"`
	EDL         string `json:"edl"`
}

// SaveResult is the outcome of SaveChanges. LocalOnly means the render
// service could not be reached and only the local snapshot was written.
type SaveResult struct {
	Saved     bool   `json:"saved"`
	LocalOnly bool   `json:"localOnly"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
}

// ExportResult is delivered to the export callback.
type ExportResult struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	VideoURL     string `json:"videoUrl,omitempty"`
	ExportID     string `json:"exportId,omitempty"`
	TextIncluded bool   `json:"textIncluded"`
	Attempts     int    `json:"attempts"`
}
