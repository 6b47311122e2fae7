package notifications

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// loggingTransport logs every push request and the status it came back with.
type loggingTransport struct {
	Transport http.RoundTripper
}

func newLoggingTransport(transport http.RoundTripper) *loggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &loggingTransport{Transport: transport}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("latency", time.Since(start)).
			Msg("Push request failed")
		return resp, err
	}

	event := log.Debug()
	switch {
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		event = log.Warn()
	case resp.StatusCode >= http.StatusInternalServerError:
		event = log.Error()
	}

	event.Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Push response")

	return resp, nil
}
