package admin

import "time"

// HealthResponse は /health のレスポンス
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerInfo はTCPサーバーのリッスン情報
type ServerInfo struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Address string `json:"address"`
}

// FilesInfo はファイルエンドポイントの保存先
type FilesInfo struct {
	Backend   string `json:"backend"`
	Directory string `json:"directory"`
}

// ConnectionStats は接続数
type ConnectionStats struct {
	Accepted int64 `json:"accepted"`
	Active   int64 `json:"active"`
}

// StatusResponse は /api/status のレスポンス
type StatusResponse struct {
	Status            string           `json:"status"`
	Server            ServerInfo       `json:"server"`
	Files             FilesInfo        `json:"files"`
	StartedAt         time.Time        `json:"started_at"`
	UptimeSeconds     float64          `json:"uptime_seconds"`
	Connections       ConnectionStats  `json:"connections"`
	RequestsTotal     int64            `json:"requests_total"`
	MalformedRequests int64            `json:"malformed_requests"`
	WriteFailures     int64            `json:"write_failures"`
	Responses         map[string]int64 `json:"responses"` // ステータスコードごとの件数
	Timestamp         time.Time        `json:"timestamp"`
}

// ErrorResponse はエラー時のレスポンス
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	statusHealthy = "healthy"
	statusRunning = "running"
)
