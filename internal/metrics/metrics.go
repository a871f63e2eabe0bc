package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del pipeline de login/sesión. Viven en un paquete aparte para
// que jwt, social y http puedan usarlas sin ciclos de import.

// UnknownProvider agrupa los callbacks a providers no registrados.
const UnknownProvider = "unknown"

var (
	SocialLogins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "social_login_total",
		Help: "Logins federados por provider y resultado",
	}, []string{"provider", "result"}) // result: success|failure

	TokenVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_verifications_total",
		Help: "Verificaciones de token por resultado",
	}, []string{"result"}) // result: valid|malformed|expired|revoked|error

	TokenRevocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_revocations_total",
		Help: "Tokens revocados por tipo",
	}, []string{"kind"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Register registra todas las métricas en reg (o el default si es nil),
// ignorando duplicados.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{SocialLogins, TokenVerifications, TokenRevocations, HTTPRequests, HTTPDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

func RecordLogin(provider, result string) {
	SocialLogins.WithLabelValues(provider, result).Inc()
}

func RecordVerification(result string) {
	TokenVerifications.WithLabelValues(result).Inc()
}

func RecordRevocation(kind string) {
	TokenRevocations.WithLabelValues(kind).Inc()
}
