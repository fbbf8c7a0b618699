package ingest

// Receipt acknowledges an accepted upload. Processing continues in the
// background; progress and the terminal result flow over the message bus.
type Receipt struct {
	UploadID     string `json:"upload_id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Status       string `json:"status"`
}

// BatchReceipt acknowledges a multi-file upload.
type BatchReceipt struct {
	UploadID string    `json:"upload_id"`
	Accepted []Receipt `json:"accepted"`
	Status   string    `json:"status"`
}

const statusAccepted = "accepted"
