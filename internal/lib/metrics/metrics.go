// Package metrics объявляет счётчики Prometheus для биллинга.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Orders созданные и отклонённые шлюзом заказы.
	Orders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billing",
		Name:      "orders_total",
		Help:      "Gateway order creation attempts by result.",
	}, []string{"result"})

	// Verifications результаты проверки платежей.
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billing",
		Name:      "verifications_total",
		Help:      "Payment verification attempts by result.",
	}, []string{"result"})

	// InterviewStarts решения квоты бесплатных интервью.
	InterviewStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billing",
		Name:      "interview_starts_total",
		Help:      "Mock interview start requests by quota decision.",
	}, []string{"result"})
)
