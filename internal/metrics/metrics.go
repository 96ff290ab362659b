// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordLogCreated()
	RecordValidationRejected()
	RecordFanoutDelivered(count int)
	RecordHTTPStatus(statusCode int)
	SetLiveConnections(n int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess     prometheus.Counter
	loginFail        prometheus.Counter
	logsCreated      prometheus.Counter
	validationReject prometheus.Counter
	fanoutDelivered  prometheus.Counter
	httpStatus       *prometheus.CounterVec
	liveConnections  prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		logsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_logs_created_total",
			Help: "作成されたウェルビーイング記録の合計数",
		}),
		validationReject: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_validation_rejected_total",
			Help: "バリデーションで拒否された記録作成の合計数",
		}),
		fanoutDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_fanout_delivered_total",
			Help: "リアルタイム配信された接続数の合計",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindlog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		liveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mindlog_ws_connections",
			Help: "現在接続中のWebSocket接続数",
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.logsCreated,
		c.validationReject,
		c.fanoutDelivered,
		c.httpStatus,
		c.liveConnections,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordLogCreated は記録の作成を記録する。
func (c *Collector) RecordLogCreated() {
	c.logsCreated.Inc()
}

// RecordValidationRejected はバリデーション拒否を記録する。
func (c *Collector) RecordValidationRejected() {
	c.validationReject.Inc()
}

// RecordFanoutDelivered は配信先接続数を記録する。
func (c *Collector) RecordFanoutDelivered(count int) {
	c.fanoutDelivered.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// SetLiveConnections は現在のWebSocket接続数を設定する。
func (c *Collector) SetLiveConnections(n int) {
	c.liveConnections.Set(float64(n))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
