package server

import (
	"sync/atomic"
	"time"
)

// trackedStatuses は集計するステータスコード
var trackedStatuses = []int{200, 201, 400, 404, 405, 500}

// Stats はワーカーが更新する統計
// 全フィールドはatomicで更新するためロックは不要
type Stats struct {
	startedAt time.Time

	accepted      atomic.Int64
	active        atomic.Int64
	requests      atomic.Int64
	malformed     atomic.Int64
	writeFailures atomic.Int64

	// 作成後にキーは変化しない
	responses map[int]*atomic.Int64
}

// Snapshot はある時点の統計のコピー
type Snapshot struct {
	StartedAt           time.Time
	Uptime              time.Duration
	ConnectionsAccepted int64
	ConnectionsActive   int64
	RequestsTotal       int64
	MalformedRequests   int64
	WriteFailures       int64
	Responses           map[int]int64
}

// NewStats は新しいStatsを作成する
func NewStats() *Stats {
	s := &Stats{
		startedAt: time.Now(),
		responses: make(map[int]*atomic.Int64, len(trackedStatuses)),
	}
	for _, code := range trackedStatuses {
		s.responses[code] = new(atomic.Int64)
	}
	return s
}

func (s *Stats) connectionOpened() {
	s.accepted.Add(1)
	s.active.Add(1)
}

func (s *Stats) connectionClosed() {
	s.active.Add(-1)
}

func (s *Stats) requestParsed() {
	s.requests.Add(1)
}

func (s *Stats) requestMalformed() {
	s.malformed.Add(1)
}

func (s *Stats) responseWritten(code int) {
	if c, ok := s.responses[code]; ok {
		c.Add(1)
	}
}

func (s *Stats) writeFailed() {
	s.writeFailures.Add(1)
}

// Snapshot は現在の統計をコピーして返す
func (s *Stats) Snapshot() Snapshot {
	responses := make(map[int]int64, len(s.responses))
	for code, c := range s.responses {
		responses[code] = c.Load()
	}

	return Snapshot{
		StartedAt:           s.startedAt,
		Uptime:              time.Since(s.startedAt),
		ConnectionsAccepted: s.accepted.Load(),
		ConnectionsActive:   s.active.Load(),
		RequestsTotal:       s.requests.Load(),
		MalformedRequests:   s.malformed.Load(),
		WriteFailures:       s.writeFailures.Load(),
		Responses:           responses,
	}
}
