// Package loader reads FreeSWITCH log files and orders them chronologically.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"fslog/internal/model"
)

var (
	// ErrNoMatch is reported for a pattern that matched no regular file.
	ErrNoMatch = errors.New("no log file matched")
	// ErrDuplicate is reported when the same file is named more than once.
	ErrDuplicate = errors.New("file already loaded")
)

// Supported values for Options.Encoding.
const (
	EncodingAuto    = "auto"
	EncodingUTF8    = "utf-8"
	EncodingGB18030 = "gb18030"
)

const maxLineSize = 10 * 1024 * 1024

// Options controls how files are located and decoded.
type Options struct {
	// Dir is prepended to relative patterns.
	Dir string
	// Workers bounds the number of files read at once. Zero means 4.
	Workers int
	// Encoding is one of the Encoding* constants. Empty means auto: valid
	// UTF-8 is kept as is, anything else is decoded as GB18030.
	Encoding string
	Logger   *zap.Logger
}

// Load resolves patterns to files, reads them in parallel and returns them
// sorted by their first timestamp.
//
// Failures on individual patterns or files do not stop the batch. They are
// combined into the returned error alongside whatever did load, so callers
// should check the files before giving up on a non-nil error.
func Load(ctx context.Context, patterns []string, opts Options) ([]model.LogFile, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	decode, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	paths, errs := resolve(patterns, opts.Dir)
	if len(paths) == 0 {
		if errs == nil {
			errs = ErrNoMatch
		}
		return nil, errs
	}

	files := make([]model.LogFile, len(paths))
	readErrs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines, err := readLines(path, decode)
			if err != nil {
				readErrs[i] = err
				return nil
			}
			files[i] = model.LogFile{Path: path, Lines: lines, Start: firstTime(lines)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}

	loaded := files[:0]
	for i := range files {
		if readErrs[i] != nil {
			errs = multierr.Append(errs, readErrs[i])
			continue
		}
		loaded = append(loaded, files[i])
	}

	if !Chronological(loaded) {
		log.Warn("log files were not in chronological order, sorting by first timestamp")
		SortByStart(loaded)
	}
	for _, f := range loaded {
		log.Debug("loaded log file",
			zap.String("path", f.Path),
			zap.Int("lines", len(f.Lines)),
			zap.Time("start", f.Start))
	}
	return loaded, errs
}

// resolve expands patterns into unique regular files, keeping first-seen order.
func resolve(patterns []string, dir string) ([]string, error) {
	var (
		paths []string
		errs  error
		seen  = make(map[string]bool)
	)
	for _, p := range patterns {
		if dir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		matches, err := filepath.Glob(p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("pattern %q: %w", p, err))
			continue
		}

		found := 0
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			found++
			abs, err := filepath.Abs(m)
			if err != nil {
				abs = m
			}
			if seen[abs] {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", m, ErrDuplicate))
				continue
			}
			seen[abs] = true
			paths = append(paths, m)
		}
		if found == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p, ErrNoMatch))
		}
	}
	return paths, errs
}

type decoder func([]byte) ([]byte, error)

func decoderFor(name string) (decoder, error) {
	switch strings.ToLower(name) {
	case "", EncodingAuto:
		return func(b []byte) ([]byte, error) {
			if utf8.Valid(b) {
				return b, nil
			}
			return fromGB18030(b)
		}, nil
	case EncodingUTF8, "utf8":
		return func(b []byte) ([]byte, error) { return b, nil }, nil
	case EncodingGB18030, "gbk", "cp936":
		return fromGB18030, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func fromGB18030(b []byte) ([]byte, error) {
	out, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), b)
	if err != nil {
		return nil, fmt.Errorf("decode gb18030: %w", err)
	}
	return out, nil
}

func readLines(path string, decode decoder) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	data, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return lines, nil
}

func firstTime(lines []string) time.Time {
	for _, l := range lines {
		if t, ok := model.FindLogTime(l); ok {
			return t
		}
	}
	return time.Time{}
}

// SortByStart orders files by first timestamp. Files without one keep their
// relative order and go last.
func SortByStart(files []model.LogFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return startsBefore(files[i], files[j])
	})
}

// Chronological reports whether files are already in SortByStart order.
func Chronological(files []model.LogFile) bool {
	return sort.SliceIsSorted(files, func(i, j int) bool {
		return startsBefore(files[i], files[j])
	})
}

func startsBefore(a, b model.LogFile) bool {
	switch {
	case a.Start.IsZero():
		return false
	case b.Start.IsZero():
		return true
	default:
		return a.Start.Before(b.Start)
	}
}
