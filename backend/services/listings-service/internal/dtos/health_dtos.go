package dtos

type HealthCheckResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

type AuthResponse struct {
	OK bool `json:"ok"`
}
