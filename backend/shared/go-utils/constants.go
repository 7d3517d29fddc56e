package utils

const (
	OrganizationName = "Management Properties"

	// Nominatim's usage policy requires an identifying User-Agent.
	GeocodeUserAgent = "ManagementProperties/1.0"

	CORSAllowAnyOrigin = "*"

	// UploadKeyPrefix namespaces every relayed upload in object storage.
	UploadKeyPrefix = "properties/"

	DefaultUploadContentType = "application/octet-stream"
)
