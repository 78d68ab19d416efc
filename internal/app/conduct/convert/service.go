// Package convert turns an uploaded .docx package into sanitized HTML
// plus a word count and the package's core metadata.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/flowhub/internal/app/conduct/docx"
	"github.com/dalemusser/flowhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/flowhub/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Metadata keys always present in a successful Result.
const (
	MetaTitle        = "Title"
	MetaAuthor       = "Author"
	MetaLastModified = "LastModified"
)

// Result describes one conversion. Callers must check Success; a failed
// conversion is reported here, not as an error.
type Result struct {
	HTMLContent         string
	WordCount           int
	FileSizeBytes       int64
	ConversionTimestamp time.Time
	Metadata            map[string]string
	Success             bool
	ErrorMessage        string
}

// Service converts DOCX packages. It holds no per-call state and is safe
// for concurrent use.
type Service struct {
	Log *zap.Logger
	Now func() time.Time
}

// New returns a Service logging to logger.
func New(logger *zap.Logger) *Service {
	return &Service{Log: logger, Now: time.Now}
}

// Convert reads src from its start and converts it. When src is an
// io.Seeker it is rewound before reading and again afterwards so the
// caller can reuse it.
func (s *Service) Convert(ctx context.Context, src io.Reader) Result {
	data, err := readAll(src)
	if err != nil {
		res := s.newResult(int64(len(data)))
		return s.fail(res, fmt.Errorf("conversion failed: %w", err))
	}
	return s.ConvertBytes(ctx, data)
}

// ConvertBytes converts an in-memory package.
func (s *Service) ConvertBytes(ctx context.Context, data []byte) Result {
	res := s.newResult(int64(len(data)))

	html, words, props, err := s.convert(ctx, data)
	if err != nil {
		if !errors.Is(err, errNoMainPart) && !errors.Is(err, errNoBody) {
			err = fmt.Errorf("conversion failed: %w", err)
		}
		return s.fail(res, err)
	}

	res.HTMLContent = html
	res.WordCount = words
	res.Success = true
	res.Metadata[MetaTitle] = props.Title
	res.Metadata[MetaAuthor] = props.Creator
	res.Metadata[MetaLastModified] = props.Modified

	metrics.Conversions.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.ConvertedWords.Observe(float64(words))
	s.logger().Info("converted docx to html",
		zap.Int("word_count", words),
		zap.Int64("bytes", res.FileSizeBytes))
	return res
}

// HTML returns only the sanitized HTML and reports every fault as an
// error, including a missing main part or body.
func (s *Service) HTML(ctx context.Context, src io.Reader) (string, error) {
	data, err := readAll(src)
	if err != nil {
		return "", err
	}
	html, _, _, err := s.convert(ctx, data)
	if err != nil {
		s.logger().Error("docx to html conversion failed", zap.Error(err))
		return "", err
	}
	return html, nil
}

func (s *Service) convert(ctx context.Context, data []byte) (string, int, coreProperties, error) {
	var props coreProperties
	if err := ctx.Err(); err != nil {
		return "", 0, props, err
	}

	pkg, err := openPackage(data)
	if err != nil {
		return "", 0, props, err
	}

	rc, err := pkg.mainPart()
	if err != nil {
		return "", 0, props, err
	}
	doc, err := docx.DecodeDocument(rc)
	rc.Close()
	if err != nil {
		return "", 0, props, err
	}
	if doc.Body == nil {
		return "", 0, props, errNoBody
	}
	if err := ctx.Err(); err != nil {
		return "", 0, props, err
	}

	html, words := docx.RenderBody(doc.Body.Elements)

	props, err = pkg.coreProperties()
	if err != nil {
		return "", 0, props, err
	}
	return htmlsanitize.Sanitize(html), words, props, nil
}

func (s *Service) newResult(size int64) Result {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Result{
		FileSizeBytes:       size,
		ConversionTimestamp: now().UTC(),
		Metadata:            make(map[string]string, 3),
	}
}

func (s *Service) fail(res Result, err error) Result {
	res.Success = false
	res.ErrorMessage = err.Error()
	metrics.Conversions.WithLabelValues(metrics.ResultFailed).Inc()
	s.logger().Error("docx to html conversion failed",
		zap.Int64("bytes", res.FileSizeBytes),
		zap.Error(err))
	return res
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// readAll reads src from the start, rewinding seekable sources before and
// after the read.
func readAll(src io.Reader) ([]byte, error) {
	if src == nil {
		return nil, errors.New("no input")
	}
	seeker, seekable := src.(io.Seeker)
	if seekable {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind input: %w", err)
		}
	}
	data, err := io.ReadAll(src)
	if seekable {
		if _, serr := seeker.Seek(0, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("rewind input: %w", serr)
		}
	}
	return data, err
}
