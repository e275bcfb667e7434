package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AlertMetrics counts inventory alert transitions and emitted notifications.
type AlertMetrics struct {
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	deduplicated  *prometheus.CounterVec
}

// NewAlertMetrics registers the alert metrics on the provided registerer.
func NewAlertMetrics(reg prometheus.Registerer) *AlertMetrics {
	if reg == nil {
		return &AlertMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plantops_alert_transitions_total",
		Help: "Inventory alert status transitions.",
	}, []string{"from", "to"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plantops_notifications_emitted_total",
		Help: "Notifications created by the alert emitter.",
	}, []string{"type", "priority"})
	deduplicated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plantops_notifications_deduplicated_total",
		Help: "Alert transitions that reused an open notification.",
	}, []string{"alert_status"})
	reg.MustRegister(transitions, notifications, deduplicated)
	return &AlertMetrics{
		transitions:   transitions,
		notifications: notifications,
		deduplicated:  deduplicated,
	}
}

func (a *AlertMetrics) IncTransition(from, to string) {
	if a == nil || a.transitions == nil {
		return
	}
	a.transitions.WithLabelValues(jobLabel(from), jobLabel(to)).Inc()
}

func (a *AlertMetrics) IncNotification(notificationType, priority string) {
	if a == nil || a.notifications == nil {
		return
	}
	a.notifications.WithLabelValues(jobLabel(notificationType), jobLabel(priority)).Inc()
}

func (a *AlertMetrics) IncDeduplicated(alertStatus string) {
	if a == nil || a.deduplicated == nil {
		return
	}
	a.deduplicated.WithLabelValues(jobLabel(alertStatus)).Inc()
}
