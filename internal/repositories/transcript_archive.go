package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gocql/gocql"
)

const insertArchivedTranscriptCQL = `
INSERT INTO transcripts (lecture_id, user_id, transcript_text, segment_count, archived_at)
VALUES (?, ?, ?, ?, ?)`

// TranscriptArchive mirrors finished transcripts into Cassandra for downstream readers.
// A nil session disables the archive.
type TranscriptArchive struct {
	session *gocql.Session
	log     *log.Helper
}

// NewTranscriptArchive constructs TranscriptArchive.
func NewTranscriptArchive(session *gocql.Session, logger log.Logger) *TranscriptArchive {
	return &TranscriptArchive{session: session, log: log.NewHelper(logger)}
}

// Enabled reports whether a Cassandra session is attached.
func (a *TranscriptArchive) Enabled() bool {
	return a != nil && a.session != nil
}

// Archive writes the plain transcript. Callers treat failures as non-fatal.
func (a *TranscriptArchive) Archive(ctx context.Context, lectureID, userID, text string, segmentCount int) error {
	if !a.Enabled() {
		return nil
	}
	err := a.session.Query(insertArchivedTranscriptCQL, lectureID, userID, text, segmentCount, time.Now().UTC()).
		WithContext(ctx).
		Exec()
	if err != nil {
		a.log.WithContext(ctx).Warnf("archive transcript failed: lecture_id=%s user_id=%s err=%v", lectureID, userID, err)
		return fmt.Errorf("archive transcript: %w", err)
	}
	return nil
}
