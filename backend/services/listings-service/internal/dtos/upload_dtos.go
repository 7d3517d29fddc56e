package dtos

type UploadResponse struct {
	URL                string `json:"url"`
	Pathname           string `json:"pathname"`
	ContentType        string `json:"contentType"`
	ContentDisposition string `json:"contentDisposition"`
	Size               int64  `json:"size"`
}
