package convert

import (
	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/internal/logging"
	"github.com/tsawler/docflip/ocr"
	"github.com/tsawler/docflip/typeset"
)

// settings is shared by both converters; each uses the fields it needs.
type settings struct {
	margins       typeset.Margins
	measurer      typeset.Measurer
	recognizer    ocr.Recognizer
	stripRepeated bool
	log           logrus.FieldLogger
}

func defaultSettings() settings {
	return settings{
		margins: typeset.UniformMargins(typeset.DefaultMargin),
		log:     logging.Discard(),
	}
}

// Option configures a converter.
type Option func(*settings)

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *settings) {
		s.log = logging.OrDiscard(log)
	}
}

// WithMargins sets the page margins used for layout and for the page setup
// of written DOCX files.
func WithMargins(m typeset.Margins) Option {
	return func(s *settings) {
		s.margins = m
	}
}

// WithMeasurer replaces the glyph measurer used for DOCX to PDF layout.
func WithMeasurer(m typeset.Measurer) Option {
	return func(s *settings) {
		s.measurer = m
	}
}

// WithRecognizer enables OCR for pages without a text layer.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(s *settings) {
		s.recognizer = r
	}
}

// WithRepeatedLineFiltering drops lines repeated at the top or bottom of
// most pages, such as running headers and page numbers, before paragraphs
// are rebuilt.
func WithRepeatedLineFiltering(enabled bool) Option {
	return func(s *settings) {
		s.stripRepeated = enabled
	}
}

func newSettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// appendUnique appends messages not already present.
func appendUnique(list []string, msgs ...string) []string {
	for _, m := range msgs {
		dup := false
		for _, existing := range list {
			if existing == m {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, m)
		}
	}
	return list
}
