package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Number of notifications created.",
	})
	ratingsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratings_submitted_total",
		Help: "Number of performance ratings submitted.",
	})
	pushSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_notifications_sent_total",
		Help: "Number of web push messages sent.",
	})
	pushFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_notifications_failed_total",
		Help: "Number of web push sends that failed.",
	})
)
