package uploads

// Status is the lifecycle state of one upload task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// File is a picked file held in memory so a failed upload can be retried.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// Task tracks one file through the upload pipeline. URL is set only in
// StatusSuccess and Error only in StatusError.
type Task struct {
	ID       string `json:"id"`
	File     File   `json:"file"`
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}
