package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WebhookResponse - 정규화에 성공하면 sink 결과와 관계없이 항상 이 형태로 응답
type WebhookResponse struct {
	Status   string `json:"status"`
	Analysis string `json:"analysis"`
}
