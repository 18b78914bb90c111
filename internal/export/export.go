// Package export encodes grid export payloads as CSV, Excel or PDF.
//
// Encoders are registered per format, similar to how table definitions are
// registered at init. The package also adapts the registry to the
// grid.ExportFunc callback in two flavors: WriterFunc streams to a writer
// carried by the context (HTTP downloads), FileFunc writes a file into a
// directory (terminal host).
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/JonMunkholm/tableview/internal/grid"
)

// ErrNoWriter is returned by WriterFunc when the context carries no writer.
var ErrNoWriter = errors.New("export: no output writer in context")

// Encoder turns a payload into bytes of one format.
type Encoder interface {
	Encode(w io.Writer, opts grid.ExportOptions, payload grid.ExportPayload) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(w io.Writer, opts grid.ExportOptions, payload grid.ExportPayload) error

// Encode calls f.
func (f EncoderFunc) Encode(w io.Writer, opts grid.ExportOptions, payload grid.ExportPayload) error {
	return f(w, opts, payload)
}

// Registry maps formats to encoders.
type Registry struct {
	mu       sync.RWMutex
	encoders map[grid.Format]Encoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{encoders: make(map[grid.Format]Encoder)}
}

// Register adds an encoder. Panics if the format is registered twice.
func (r *Registry) Register(format grid.Format, enc Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encoders[format]; exists {
		panic(fmt.Sprintf("export: encoder for %q already registered", format))
	}
	r.encoders[format] = enc
}

// Get returns the encoder for format.
func (r *Registry) Get(format grid.Format) (Encoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enc, ok := r.encoders[format]
	return enc, ok
}

// Formats returns the registered formats, sorted.
func (r *Registry) Formats() []grid.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]grid.Format, 0, len(r.encoders))
	for f := range r.encoders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Encode writes payload in format to w.
func (r *Registry) Encode(w io.Writer, format grid.Format, opts grid.ExportOptions, payload grid.ExportPayload) error {
	enc, ok := r.Get(format)
	if !ok {
		return fmt.Errorf("%w: %q", grid.ErrUnknownFormat, format)
	}
	return enc.Encode(w, opts, payload)
}

// Default holds the CSV, Excel and PDF encoders.
var Default = func() *Registry {
	r := NewRegistry()
	r.Register(grid.FormatCSV, EncoderFunc(EncodeCSV))
	r.Register(grid.FormatExcel, EncoderFunc(EncodeExcel))
	r.Register(grid.FormatPDF, EncoderFunc(EncodePDF))
	return r
}()

// Filename returns the download name for opts and format.
func Filename(opts grid.ExportOptions, format grid.Format) string {
	name := strings.TrimSpace(opts.Filename)
	if name == "" {
		name = "export"
	}
	// Keep path separators out of user-supplied names
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' {
			return '_'
		}
		return r
	}, name)
	return name + "." + format.Extension()
}

// Subtitle describes an export, e.g. "1,204 rows, 2 filters applied".
func Subtitle(rows, filters int) string {
	text := humanize.Comma(int64(rows)) + " rows"
	if rows == 1 {
		text = "1 row"
	}
	switch filters {
	case 0:
	case 1:
		text += ", 1 filter applied"
	default:
		text += fmt.Sprintf(", %d filters applied", filters)
	}
	return text
}

type writerKey struct{}

// ContextWithWriter attaches the destination of a WriterFunc export.
func ContextWithWriter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, writerKey{}, w)
}

// WriterFunc returns an export callback that encodes into the writer
// carried by ctx. Output is buffered so a failed encode writes nothing.
func WriterFunc(r *Registry) grid.ExportFunc {
	return func(ctx context.Context, format grid.Format, opts grid.ExportOptions, payload grid.ExportPayload) error {
		w, ok := ctx.Value(writerKey{}).(io.Writer)
		if !ok || w == nil {
			return ErrNoWriter
		}

		var buf bytes.Buffer
		if err := r.Encode(&buf, format, opts, payload); err != nil {
			return err
		}
		_, err := buf.WriteTo(w)
		return err
	}
}

// FileFunc returns an export callback that writes <dir>/<filename>.<ext>.
// The file is written to a temporary name and renamed on success, so a
// failed encode leaves no partial file behind. Written paths are reported
// to onWritten when it is non-nil.
func FileFunc(r *Registry, dir string, onWritten func(path string)) grid.ExportFunc {
	return func(ctx context.Context, format grid.Format, opts grid.ExportOptions, payload grid.ExportPayload) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}

		tmp, err := os.CreateTemp(dir, ".export-*")
		if err != nil {
			return fmt.Errorf("create temp file: %w", err)
		}
		defer os.Remove(tmp.Name()) // No-op after a successful rename

		if err := r.Encode(tmp, format, opts, payload); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("close export file: %w", err)
		}

		path := filepath.Join(dir, Filename(opts, format))
		if err := os.Rename(tmp.Name(), path); err != nil {
			return fmt.Errorf("save export file: %w", err)
		}
		if onWritten != nil {
			onWritten(path)
		}
		return nil
	}
}
