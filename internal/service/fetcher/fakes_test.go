package fetcher

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/vertextoedge/pkgfetch/internal/adapter/filesystem"
	"github.com/vertextoedge/pkgfetch/internal/adapter/stampfile"
	"github.com/vertextoedge/pkgfetch/internal/domain"
	"github.com/vertextoedge/pkgfetch/internal/port"
	"go.uber.org/zap"
)

// fakeTransport serves canned metadata and body bytes, and counts calls.
type fakeTransport struct {
	head    port.HeadResult
	headErr error

	body     []byte
	rangeErr error
	// failBodyAfter > 0 makes the body reader fail after that many bytes.
	failBodyAfter int

	detail string

	headCalls  int
	rangeCalls int
	lastOffset int64
}

var _ port.Transport = (*fakeTransport)(nil)

func (f *fakeTransport) HeadOnly(url string) (port.HeadResult, error) {
	f.headCalls++
	if f.headErr != nil {
		return port.HeadResult{}, f.headErr
	}
	return f.head, nil
}

func (f *fakeTransport) GetRange(url string, fromOffset int64) (io.ReadCloser, error) {
	f.rangeCalls++
	f.lastOffset = fromOffset
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}

	data := f.body
	if fromOffset >= int64(len(data)) {
		data = nil
	} else {
		data = data[fromOffset:]
	}

	var r io.Reader = bytes.NewReader(data)
	if f.failBodyAfter > 0 && f.failBodyAfter < len(data) {
		r = io.MultiReader(
			bytes.NewReader(data[:f.failBodyAfter]),
			&failingReader{},
		)
	}
	return io.NopCloser(r), nil
}

func (f *fakeTransport) LastErrorDetail() string {
	return f.detail
}

// failingReader errors on the first read.
type failingReader struct{}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

// spyStamps counts stamp writes on top of a real stamp store.
type spyStamps struct {
	inner  *stampfile.Store
	writes int
}

var _ port.StampStore = (*spyStamps)(nil)

func newSpyStamps() *spyStamps {
	return &spyStamps{inner: stampfile.New(zap.NewNop())}
}

func (s *spyStamps) Write(cachePath, stamp string) error {
	s.writes++
	return s.inner.Write(cachePath, stamp)
}

func (s *spyStamps) Matches(cachePath, stamp string) bool {
	return s.inner.Matches(cachePath, stamp)
}

// memHistory is an in-memory fetch log.
type memHistory struct {
	records []domain.FetchRecord
}

var _ port.FetchLogRepository = (*memHistory)(nil)

func (m *memHistory) Record(rec *domain.FetchRecord) error {
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return nil
}

func (m *memHistory) Recent(limit int) ([]domain.FetchRecord, error) {
	if limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]domain.FetchRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func newTestFS(t *testing.T) *filesystem.Manager {
	t.Helper()
	fs, err := filesystem.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create filesystem manager: %v", err)
	}
	return fs
}
