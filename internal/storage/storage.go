package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PutInput struct {
	// Reference is the donation's processor transaction id; it becomes part of
	// the archive key so a receipt can be found from a transaction row.
	Reference   string
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

// Storage archives rendered receipt documents. Archiving is best effort; a
// failed Put never blocks receipt delivery. Archived receipts are retained
// indefinitely, so there is no delete operation.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
}

// receiptKey builds the archive key: date-partitioned, keyed on the donation
// reference, with a uuid suffix so a re-sent receipt never overwrites the
// original. Only rendered receipt document extensions are kept.
func receiptKey(in PutInput, now time.Time) string {
	ref := sanitizeRef(in.Reference)
	if ref == "" {
		ref = "receipt"
	}
	return now.Format("2006/01") + "/" + ref + "-" + uuid.NewString() + safeExt(in.Filename)
}

func sanitizeRef(ref string) string {
	var b strings.Builder
	for _, r := range ref {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf", ".html", ".txt":
		return ext
	default:
		return ""
	}
}
