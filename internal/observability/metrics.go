package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_thikana_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_thikana_active_connections",
			Help: "Number of active connections",
		},
	)

	// OTPIssued counts issued one-time codes
	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_thikana_otp_issued_total",
			Help: "Number of one-time codes issued",
		},
		[]string{"status"},
	)

	// OTPVerifications counts verification attempts by outcome
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_thikana_otp_verifications_total",
			Help: "Number of OTP verification attempts",
		},
		[]string{"outcome"},
	)

	// OTPDispatchFailures counts SMS dispatch failures (non-fatal)
	OTPDispatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "app_thikana_otp_dispatch_failures_total",
			Help: "Number of failed OTP SMS dispatches",
		},
	)

	// RegistrationFlows counts flow transitions by stage outcome
	RegistrationFlows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_thikana_registration_flows_total",
			Help: "Number of registration/login flow events",
		},
		[]string{"event"},
	)

	// TokensIssued counts session tokens issued
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_thikana_tokens_issued_total",
			Help: "Number of session tokens issued",
		},
		[]string{"path"},
	)

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_thikana_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)
)
