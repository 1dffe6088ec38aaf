package metrics

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/giygas/appmetrics/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// renderer is implemented by *Registry
type renderer interface {
	Render(w io.Writer) error
}

// Handler serves g in the exposition format negotiated with the scraper.
// Text scrapes of a Registry go through Render so families without series
// keep their HELP and TYPE lines; other formats and gatherers use promhttp.
// Gather or encoding errors answer 500 with the error text.
func Handler(g prometheus.Gatherer) http.Handler {
	promHandler := promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:      errorLog{},
		ErrorHandling: promhttp.HTTPErrorOnError,
	})

	r, ok := g.(renderer)
	if !ok {
		return promHandler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		format := expfmt.Negotiate(req.Header)
		if format.FormatType() != expfmt.TypeTextPlain {
			promHandler.ServeHTTP(w, req)
			return
		}

		var buf bytes.Buffer
		if err := r.Render(&buf); err != nil {
			logging.Error("Failed to serve metrics", "error", err)
			http.Error(w, "An error has occurred while serving metrics:\n\n"+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", string(format))
		if _, err := w.Write(buf.Bytes()); err != nil {
			logging.Debug("Failed to write metrics response", "error", err)
		}
	})
}

// errorLog forwards promhttp errors to the application logger
type errorLog struct{}

func (errorLog) Println(v ...interface{}) {
	logging.Error("Failed to serve metrics", "error", fmt.Sprint(v...))
}
