package install

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/modsmith/launcher/internal/clock"
	"github.com/modsmith/launcher/progress"
)

// progressEvery throttles download progress emissions so a fast stream does
// not flood the presentation layer.
const progressEvery = 200 * time.Millisecond

// DownloadFile streams source to dest, emitting throttled progress over the
// supplied span. The downloaded byte count is verified against the declared
// content length when the server provides one - a short read is an error,
// never a silent success. The returned count is the number of bytes written.
func DownloadFile(ctx context.Context, fs afs.Service, client *http.Client, source, dest, label string, tracker *progress.Tracker, span progress.Span) (int64, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid download location %s: %w", source, err)
	}
	response, err := client.Do(request)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", source, err)
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return 0, fmt.Errorf("failed to download %s: HTTP %d", source, response.StatusCode)
	}

	reader := &progressReader{
		source:  response.Body,
		total:   response.ContentLength,
		label:   label,
		tracker: tracker,
		span:    span,
		last:    clock.Now(),
	}
	if err := fs.Upload(ctx, dest, file.DefaultFileOsMode, reader); err != nil {
		return reader.read, fmt.Errorf("failed to store download %s: %w", dest, err)
	}
	if reader.total > 0 && reader.read < reader.total {
		return reader.read, fmt.Errorf("incomplete download: expected %d bytes, got %d", reader.total, reader.read)
	}
	tracker.Report(fmt.Sprintf("%s downloaded.", label), span.End)
	return reader.read, nil
}

// progressReader counts bytes as the storage layer drains the HTTP body and
// reports time-throttled progress. Without a known total it parks the bar at
// the middle of the span rather than faking precision.
type progressReader struct {
	source  io.Reader
	total   int64
	read    int64
	label   string
	tracker *progress.Tracker
	span    progress.Span
	last    time.Time
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.source.Read(p)
	r.read += int64(n)
	now := clock.Now()
	if n > 0 && (now.Sub(r.last) >= progressEvery || r.read == r.total) {
		r.last = now
		if r.total > 0 {
			frac := float64(r.read) / float64(r.total)
			r.tracker.Report(
				fmt.Sprintf("%s... %.1f/%.1f MB", r.label, float64(r.read)/1024/1024, float64(r.total)/1024/1024),
				r.span.At(frac),
			)
		} else {
			r.tracker.Report(
				fmt.Sprintf("%s... %.1f MB", r.label, float64(r.read)/1024/1024),
				r.span.At(0.5),
			)
		}
	}
	return n, err
}
