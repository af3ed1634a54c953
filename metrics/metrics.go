package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportsCreatedTotal counts created reports by category.
	ReportsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civichub",
		Subsystem: "reports",
		Name:      "created_total",
		Help:      "Total number of reports created, labeled by category.",
	}, []string{"category"})

	// UpvoteTogglesTotal counts upvote toggle operations by direction.
	UpvoteTogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civichub",
		Subsystem: "reports",
		Name:      "upvote_toggles_total",
		Help:      "Total number of upvote toggles applied, labeled by direction (added/removed).",
	}, []string{"direction"})

	// StatusUpdatesTotal counts admin status changes by target status.
	StatusUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civichub",
		Subsystem: "reports",
		Name:      "status_updates_total",
		Help:      "Total number of admin status updates, labeled by new status.",
	}, []string{"status"})

	// CommentsCreatedTotal counts posted comments.
	CommentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "civichub",
		Subsystem: "reports",
		Name:      "comments_created_total",
		Help:      "Total number of comments posted.",
	})

	// ClassifierFailuresTotal counts sentiment classifier failures. Each
	// failure fails one report creation.
	ClassifierFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "civichub",
		Subsystem: "sentiment",
		Name:      "classifier_failures_total",
		Help:      "Total number of sentiment classifier failures.",
	})
)

// Register registers all service metrics with the default registry.
// Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsCreatedTotal,
			UpvoteTogglesTotal,
			StatusUpdatesTotal,
			CommentsCreatedTotal,
			ClassifierFailuresTotal,
		)
	})
}
