// Package eventbus distributes analysis lifecycle events to in-process
// subscribers without coupling the engine to its observers.
package eventbus

import (
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
)

// TopicReportAnalyzed fires once per completed analysis.
const TopicReportAnalyzed = "report.analyzed"

// ReportAnalyzed is the payload published on TopicReportAnalyzed.
type ReportAnalyzed struct {
	ReportID   string    `json:"report_id"`
	IssueType  string    `json:"issue_type"`
	TrustScore float64   `json:"trust_score"`
	Severity   float64   `json:"severity"`
	Priority   string    `json:"priority"`
	Duplicate  bool      `json:"duplicate"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

var (
	instance evbus.Bus
	once     sync.Once
)

// Get returns the process-wide bus instance.
func Get() evbus.Bus {
	once.Do(func() {
		instance = evbus.New()
	})
	return instance
}

// Publish delivers an event to every subscriber of the topic.
func Publish(topic string, args ...interface{}) {
	Get().Publish(topic, args...)
}

// Subscribe registers a synchronous handler for the topic.
func Subscribe(topic string, fn interface{}) error {
	return Get().Subscribe(topic, fn)
}

// SubscribeAsync registers a handler that runs outside the publisher's
// goroutine. Transactional delivery keeps events for one topic ordered.
func SubscribeAsync(topic string, fn interface{}) error {
	return Get().SubscribeAsync(topic, fn, true)
}

// Unsubscribe removes a previously registered handler.
func Unsubscribe(topic string, fn interface{}) error {
	return Get().Unsubscribe(topic, fn)
}
