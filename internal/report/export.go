package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fslog/internal/model"
)

// Kind selects which files Export writes.
type Kind string

const (
	KindResult  Kind = "result"
	KindLog     Kind = "log"
	KindDetails Kind = "details"
	KindAll     Kind = "all"
)

// ParseKind validates a kind given on the command line.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindResult, KindLog, KindDetails, KindAll:
		return k, nil
	}
	return "", fmt.Errorf("unknown export kind %q (want result, log, details or all)", s)
}

// File name suffixes.
const (
	ExtResult  = ".result"
	ExtLog     = ".log"
	ExtDetails = ".details"
)

// Exporter writes reports into a directory.
type Exporter struct {
	Dir   string
	Files []model.LogFile
	Gap   time.Duration
	Log   *zap.Logger
}

// Export writes the files of kind for sessions and returns their paths.
// name is the base name of the result summary. A failure on one file does
// not stop the others; all failures are combined in the error.
func (e Exporter) Export(kind Kind, name string, sessions []*model.Session) ([]string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var (
		written []string
		errs    error
	)
	if kind == KindResult || kind == KindAll {
		path, err := e.WriteResult(name, sessions)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			written = append(written, path)
		}
	}
	if kind == KindLog || kind == KindAll {
		paths, err := e.WriteLogs(sessions)
		written = append(written, paths...)
		errs = multierr.Append(errs, err)
	}
	if kind == KindDetails || kind == KindAll {
		paths, err := e.WriteDetails(sessions)
		written = append(written, paths...)
		errs = multierr.Append(errs, err)
	}
	e.logger().Info("export complete",
		zap.String("dir", e.Dir),
		zap.String("kind", string(kind)),
		zap.Int("files", len(written)))
	return written, errs
}

// WriteResult writes the result table and totals to <name>.result.
func (e Exporter) WriteResult(name string, sessions []*model.Session) (string, error) {
	return e.write(name+ExtResult, ResultFile(sessions))
}

// WriteLogs writes each session's raw timeline to <number>__<uuid>.log.
func (e Exporter) WriteLogs(sessions []*model.Session) ([]string, error) {
	var (
		out  []string
		errs error
	)
	for _, s := range sessions {
		path, err := e.write(LogFileName(s), e.rawLog(s))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, path)
	}
	return out, errs
}

// WriteDetails writes each session's details view to
// <number>__<uuid>__<conclusion>.details.
func (e Exporter) WriteDetails(sessions []*model.Session) ([]string, error) {
	var (
		out  []string
		errs error
	)
	for _, s := range sessions {
		path, err := e.write(DetailsFileName(s), DetailsFile(e.Files, e.Gap, s))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, path)
	}
	return out, errs
}

// LogFileName names the raw timeline export of s.
func LogFileName(s *model.Session) string {
	return numberOrNull(s.CallNumber) + "__" + s.ID + ExtLog
}

// DetailsFileName names the details export of s.
func DetailsFileName(s *model.Session) string {
	return numberOrNull(s.CallNumber) + "__" + s.ID + "__" + string(s.Result.Conclusion) + ExtDetails
}

func (e Exporter) rawLog(s *model.Session) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "call number: %s\nuuid: %s\n\n%7s  %s\n", s.CallNumber, s.ID, "LINE", "LOG")

	lastFile := -1
	for _, loc := range s.Locations() {
		if loc.File != lastFile {
			path := fmt.Sprintf("file #%d", loc.File)
			if loc.File < len(e.Files) {
				path = e.Files[loc.File].Path
			}
			sb.WriteString("\n" + path + "\n")
			lastFile = loc.File
		}
		fmt.Fprintf(&sb, "%7d  %s\n", loc.Line+1, s.Message(loc))
	}
	return sb.String()
}

func (e Exporter) write(name, content string) (string, error) {
	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	e.logger().Debug("wrote export file", zap.String("path", path))
	return path, nil
}

func (e Exporter) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func numberOrNull(n string) string {
	if n == "" {
		return nullNumber
	}
	return n
}
