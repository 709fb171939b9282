package services

import "context"

// Database is an optional sink for log records. The relay keeps no other state.
type Database interface {
	WriteLogMessage(ctx context.Context, data Data) error
	Close(ctx context.Context) error
}

type Data interface {
	DataType() string
}
