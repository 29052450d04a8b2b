package vision

// Wire types of the Cloud Vision REST API (v1), trimmed to the fields the pipeline reads.

type feature struct {
	Type string `json:"type"`
}

type image struct {
	Content string `json:"content"`
}

type annotateImageRequest struct {
	Image    image     `json:"image"`
	Features []feature `json:"features"`
}

type batchAnnotateImagesRequest struct {
	Requests []annotateImageRequest `json:"requests"`
}

type status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type textAnnotation struct {
	Description string `json:"description"`
}

type fullTextAnnotation struct {
	Text string `json:"text"`
}

type annotateImageResponse struct {
	FullTextAnnotation *fullTextAnnotation `json:"fullTextAnnotation,omitempty"`
	TextAnnotations    []textAnnotation    `json:"textAnnotations,omitempty"`
	Error              *status             `json:"error,omitempty"`
}

// text prefers the structured document text and falls back to the first plain annotation
func (r annotateImageResponse) text() string {
	if r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "" {
		return r.FullTextAnnotation.Text
	}
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description
	}
	return ""
}

type batchAnnotateImagesResponse struct {
	Responses []annotateImageResponse `json:"responses"`
}

type gcsSource struct {
	URI string `json:"uri"`
}

type gcsDestination struct {
	URI string `json:"uri"`
}

type inputConfig struct {
	GCSSource gcsSource `json:"gcsSource"`
	MimeType  string    `json:"mimeType"`
}

type outputConfig struct {
	GCSDestination gcsDestination `json:"gcsDestination"`
	BatchSize      int            `json:"batchSize,omitempty"`
}

type asyncAnnotateFileRequest struct {
	InputConfig  inputConfig  `json:"inputConfig"`
	Features     []feature    `json:"features"`
	OutputConfig outputConfig `json:"outputConfig"`
}

type asyncBatchAnnotateFilesRequest struct {
	Requests []asyncAnnotateFileRequest `json:"requests"`
}

type operation struct {
	Name  string  `json:"name"`
	Done  bool    `json:"done"`
	Error *status `json:"error,omitempty"`
}

// batchOutput is the layout of each JSON document written to the destination prefix
type batchOutput struct {
	Responses []annotateImageResponse `json:"responses"`
}
