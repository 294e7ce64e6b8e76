package event

import (
	"github.com/sirupsen/logrus"
)

// EventHandler returns nil when the event is not of interest to it.
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

// EventHandlers is populated at bootstrap, the directory indexers live here.
var EventHandlers []EventHandler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handler := range EventHandlers {
		r := handler(record)
		if r == nil {
			continue
		}
		results = append(results, *r)

		if r.Success {
			logrus.Info("event ", record.SourceType, " ", record.SourceId, " handled by ", r.HandlerIdentifier)
		} else {
			logrus.Error("event ", record.SourceType, " ", record.SourceId, " handler ", r.HandlerIdentifier, " failed: ", r.Message)
		}
	}
	return results
}
