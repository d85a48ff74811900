package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flushWriter struct {
	http.ResponseWriter
	flushed bool
}

func (m *flushWriter) Flush() { m.flushed = true }

type hijackWriter struct {
	http.ResponseWriter
	hijacked bool
}

func (m *hijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	m.hijacked = true
	return nil, nil, nil
}

// minimalResponseWriter is a bare http.ResponseWriter without Flusher/Hijacker.
type minimalResponseWriter struct {
	header http.Header
}

func (m *minimalResponseWriter) Header() http.Header {
	if m.header == nil {
		m.header = make(http.Header)
	}
	return m.header
}

func (m *minimalResponseWriter) Write(b []byte) (int, error) { return len(b), nil }

func (m *minimalResponseWriter) WriteHeader(int) {}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())

	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusNotFound, rec.status)
}

func TestStatusRecorder_DefaultsTo200AndCountsBytes(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())

	_, _ = rec.Write([]byte("hello"))
	_, _ = rec.Write([]byte(" world"))

	assert.Equal(t, http.StatusOK, rec.status)
	assert.Equal(t, 11, rec.bytes)
}

func TestStatusRecorder_Flush(t *testing.T) {
	underlying := &flushWriter{ResponseWriter: httptest.NewRecorder()}
	newStatusRecorder(underlying).Flush()
	assert.True(t, underlying.flushed)

	// No-op when unsupported.
	newStatusRecorder(&minimalResponseWriter{}).Flush()
}

func TestStatusRecorder_Hijack(t *testing.T) {
	underlying := &hijackWriter{ResponseWriter: httptest.NewRecorder()}
	_, _, err := newStatusRecorder(underlying).Hijack()
	assert.NoError(t, err)
	assert.True(t, underlying.hijacked)

	_, _, err = newStatusRecorder(&minimalResponseWriter{}).Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}

func TestStatusRecorder_Unwrap(t *testing.T) {
	underlying := httptest.NewRecorder()
	assert.Same(t, underlying, newStatusRecorder(underlying).Unwrap())
}
