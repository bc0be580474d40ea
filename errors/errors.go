package errors

import "fmt"

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrNotConnected        = fmt.Errorf("connection is not open")
	ErrSendBufferFull      = fmt.Errorf("send buffer is full")
	ErrConnectionClosed    = fmt.Errorf("connection has been closed")
	ErrIdentityUnavailable = fmt.Errorf("identity storage unavailable")
	ErrIdentityNotFound    = fmt.Errorf("no identity persisted")
	ErrUnrecognizedFrame   = fmt.Errorf("unrecognized frame")
)
