// Package logsink stores append-only per-check log streams on disk and
// rotates them into gzip+base64 archives.
//
// A live stream <name> lives in <dir>/<name>.log, an archive in
// <dir>/<name>.gz.b64.
package logsink

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/NordCoder/uptimed/internal/domain/check"
	"github.com/NordCoder/uptimed/internal/keylock"
)

const (
	LiveSuffix    = ".log"
	ArchiveSuffix = ".gz.b64"
)

var (
	ErrEmptyStream   = errors.New("log stream is empty")
	ErrArchiveExists = errors.New("archive already exists")
	ErrInvalidName   = errors.New("invalid log stream name")
)

var _ check.LogSink = (*Sink)(nil)

type Sink struct {
	dir   string
	locks keylock.Map
	log   *zap.Logger
}

// New opens (creating if needed) the log directory. A nil logger discards.
func New(dir string, l *zap.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Sink{
		dir: dir,
		log: l.With(zap.String("component", "logsink")),
	}, nil
}

func (s *Sink) Dir() string { return s.dir }

// ArchiveName derives the archive name for stream rotated at t.
func ArchiveName(stream string, t time.Time) string {
	return stream + "-" + strconv.FormatInt(t.UnixMilli(), 10)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *Sink) livePath(stream string) string { return filepath.Join(s.dir, stream+LiveSuffix) }

func (s *Sink) archivePath(name string) string { return filepath.Join(s.dir, name+ArchiveSuffix) }

// Append writes line plus a newline to the stream, creating it if needed.
func (s *Sink) Append(stream string, line []byte) error {
	if err := validName(stream); err != nil {
		return err
	}
	unlock := s.locks.Lock(stream)
	defer unlock()

	f, err := os.OpenFile(s.livePath(stream), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open stream %s: %w", stream, err)
	}
	buf := make([]byte, 0, len(line)+1)
	buf = append(append(buf, line...), '\n')
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("append stream %s: %w", stream, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close stream %s: %w", stream, err)
	}
	return nil
}

// List returns stream names with suffixes stripped. Archives are included
// only when includeArchives is set.
func (s *Sink) List(includeArchives bool) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read log dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case strings.HasSuffix(name, LiveSuffix):
			out = append(out, strings.TrimSuffix(name, LiveSuffix))
		case includeArchives && strings.HasSuffix(name, ArchiveSuffix):
			out = append(out, strings.TrimSuffix(name, ArchiveSuffix))
		}
	}
	return out, nil
}

// Compress writes a gzip+base64 copy of the live stream to a new archive.
func (s *Sink) Compress(stream, archive string) error {
	if err := validName(stream); err != nil {
		return err
	}
	if err := validName(archive); err != nil {
		return err
	}
	unlock := s.locks.Lock(stream)
	defer unlock()
	return s.compress(stream, archive)
}

func (s *Sink) compress(stream, archive string) error {
	data, err := os.ReadFile(s.livePath(stream))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(data) == 0) {
		return fmt.Errorf("%w: %s", ErrEmptyStream, stream)
	}
	if err != nil {
		return fmt.Errorf("read stream %s: %w", stream, err)
	}

	encoded, err := encode(data)
	if err != nil {
		return fmt.Errorf("compress stream %s: %w", stream, err)
	}

	f, err := os.OpenFile(s.archivePath(archive), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrArchiveExists, archive)
	}
	if err != nil {
		return fmt.Errorf("create archive %s: %w", archive, err)
	}
	if _, err := f.Write(encoded); err != nil {
		_ = f.Close()
		_ = os.Remove(s.archivePath(archive))
		return fmt.Errorf("write archive %s: %w", archive, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(s.archivePath(archive))
		return fmt.Errorf("close archive %s: %w", archive, err)
	}
	return nil
}

// Decompress returns the original log text stored in an archive.
func (s *Sink) Decompress(archive string) ([]byte, error) {
	if err := validName(archive); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.archivePath(archive))
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", archive, err)
	}
	out, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decompress archive %s: %w", archive, err)
	}
	return out, nil
}

// Truncate empties the live stream in place.
func (s *Sink) Truncate(stream string) error {
	if err := validName(stream); err != nil {
		return err
	}
	unlock := s.locks.Lock(stream)
	defer unlock()
	return s.truncate(stream)
}

func (s *Sink) truncate(stream string) error {
	if err := os.Truncate(s.livePath(stream), 0); err != nil {
		return fmt.Errorf("truncate stream %s: %w", stream, err)
	}
	return nil
}

// Rotate compresses then truncates the stream while holding its lock, so no
// append lands between the two steps.
func (s *Sink) Rotate(stream, archive string) error {
	if err := validName(stream); err != nil {
		return err
	}
	if err := validName(archive); err != nil {
		return err
	}
	unlock := s.locks.Lock(stream)
	defer unlock()

	if err := s.compress(stream, archive); err != nil {
		return err
	}
	if err := s.truncate(stream); err != nil {
		return err
	}
	s.log.Debug("stream rotated", zap.String("stream", stream), zap.String("archive", archive))
	return nil
}

func encode(data []byte) ([]byte, error) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(gz.Len()))
	base64.StdEncoding.Encode(out, gz.Bytes())
	return out, nil
}

func decode(data []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
