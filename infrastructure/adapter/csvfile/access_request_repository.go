package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gravitational/trace"

	"github.com/guestgate/guestgate/application/port/outbound"
	"github.com/guestgate/guestgate/domain/entity"
)

// AccessRequestRepository appends access requests to a CSV file. The header
// row is written when the file is created or empty. Every data field is
// quoted.
type AccessRequestRepository struct {
	path string

	mu sync.Mutex // serializes appends within the process
}

var _ outbound.AccessRequestRepository = (*AccessRequestRepository)(nil)

func NewAccessRequestRepository(path string) *AccessRequestRepository {
	return &AccessRequestRepository{path: path}
}

func (r *AccessRequestRepository) Path() string {
	return r.path
}

func (r *AccessRequestRepository) Append(_ context.Context, req *entity.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return trace.ConvertSystemError(err)
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return trace.ConvertSystemError(err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return trace.ConvertSystemError(err)
	}

	var b strings.Builder
	if info.Size() == 0 {
		b.WriteString(strings.Join(entity.AccessRequestHeader, ","))
		b.WriteByte('\n')
	}
	b.WriteString(FormatRow(req.Record()))

	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return trace.ConvertSystemError(err)
	}
	return trace.ConvertSystemError(f.Close())
}

// FormatRow renders fields as one CSV line, each field quoted with inner
// quotes doubled.
func FormatRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = Quote(field)
	}
	return strings.Join(quoted, ",") + "\n"
}

func Quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
