package entity

import "time"

// LogMessage is a log record stored in the payment_log collection.
type LogMessage struct {
	Time      time.Time `json:"time" bson:"time"`
	Level     string    `json:"level" bson:"level"`
	Category  string    `json:"category" bson:"category"`
	Text      string    `json:"text" bson:"text"`
	Error     string    `json:"error,omitempty" bson:"error,omitempty"`
	Timestamp string    `json:"timestamp" bson:"timestamp"`
}

func (l *LogMessage) DataType() string {
	return "log_message"
}
