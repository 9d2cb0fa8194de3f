package transport

import applog "github.com/C0D3-M4513R/visualizer2/internal/log"

// LoggingTransport is a stand-in renderer that logs payload types at debug
// level. Useful when no network transport is enabled.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	applog.Infof("transport: using logging transport")
	return &LoggingTransport{}
}

// Send logs the payload type and discards it.
func (lt *LoggingTransport) Send(data any) error {
	applog.Debugf("transport: payload (%T)", data)
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error { return nil }

var _ Transport = (*LoggingTransport)(nil)
