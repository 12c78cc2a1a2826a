package admin

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"

	"rawhttpd/internal/config"
	"rawhttpd/internal/server"
)

// StatusProvider は統計のスナップショットを返す
type StatusProvider interface {
	Snapshot() server.Snapshot
}

// Handler は管理APIのエンドポイントを実装する
type Handler struct {
	config *config.Config
	stats  StatusProvider
	doc    *openapi3.T

	// リッスン中のアドレス（ポート0で起動した場合に実際の値を返すため）
	addr func() net.Addr
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *Handler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now(),
	}

	c.JSON(http.StatusOK, response)
}

// GetStatus はサーバー状態取得エンドポイントの実装
func (h *Handler) GetStatus(c *gin.Context) {
	snap := h.stats.Snapshot()

	responses := make(map[string]int64, len(snap.Responses))
	for code, n := range snap.Responses {
		responses[strconv.Itoa(code)] = n
	}

	response := StatusResponse{
		Status: statusRunning,
		Server: h.serverInfo(),
		Files: FilesInfo{
			Backend:   h.config.Files.Backend,
			Directory: h.config.Files.Directory,
		},
		StartedAt:     snap.StartedAt,
		UptimeSeconds: snap.Uptime.Seconds(),
		Connections: ConnectionStats{
			Accepted: snap.ConnectionsAccepted,
			Active:   snap.ConnectionsActive,
		},
		RequestsTotal:     snap.RequestsTotal,
		MalformedRequests: snap.MalformedRequests,
		WriteFailures:     snap.WriteFailures,
		Responses:         responses,
		Timestamp:         time.Now(),
	}

	c.JSON(http.StatusOK, response)
}

// GetOpenAPI は埋め込まれたOpenAPIドキュメントを返す
func (h *Handler) GetOpenAPI(c *gin.Context) {
	c.JSON(http.StatusOK, h.doc)
}

// NotFound は未定義のパスに対するレスポンス
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:     "not_found",
		Message:   "指定されたパスは存在しません",
		Timestamp: time.Now(),
	})
}

// serverInfo はTCPサーバーのアドレスを返す
func (h *Handler) serverInfo() ServerInfo {
	info := ServerInfo{
		Host:    h.config.Server.Host,
		Port:    h.config.Server.Port,
		Address: h.config.ServerAddress(),
	}

	if h.addr == nil {
		return info
	}
	if tcp, ok := h.addr().(*net.TCPAddr); ok && tcp != nil {
		info.Port = tcp.Port
		info.Address = tcp.String()
	}
	return info
}
