// Package decode turns raw file bytes into normalized text lines.
//
// Decoding never fails. The strategy chain is: byte-order mark, strict UTF-8,
// statistical detection, then a lossy fallback. When the fallback is used the
// result is flagged so callers can count it, but the file is still searched.
package decode

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// MinConfidence is the lowest detector confidence (0-100) accepted as a real answer.
const MinConfidence = 50

// Encoding names reported in Result.Encoding for the built-in strategies.
const (
	EncodingUTF8        = "UTF-8"
	EncodingUTF8BOM     = "UTF-8 (BOM)"
	EncodingUTF16LE     = "UTF-16LE"
	EncodingUTF16BE     = "UTF-16BE"
	EncodingWindows1252 = "windows-1252"
	EncodingLossyUTF8   = "UTF-8 (lossy)"
)

// Result is the decoded text of one file.
type Result struct {
	Text     string
	Encoding string
	Fallback bool   // No encoding could be determined with confidence
	Strategy string // Name of the chain step that produced the text
}

// FallbackStrategy names the final lossy step that runs when every Strategy passes.
const FallbackStrategy = "fallback"

// Strategy is one step of the decode chain. Decode reports ok=false to pass to the next step.
type Strategy interface {
	Name() string
	Decode(data []byte) (Result, bool)
}

// Decoder runs a chain of strategies and always produces a Result.
type Decoder struct {
	strategies []Strategy
}

// NewDecoder creates a Decoder with the given strategies, tried in order.
// The lossy fallback always runs last and does not need to be listed.
func NewDecoder(strategies ...Strategy) *Decoder {
	return &Decoder{strategies: strategies}
}

// Default is the BOM -> UTF-8 -> detector chain.
var Default = NewDecoder(BOMStrategy{}, UTF8Strategy{}, DetectorStrategy{MinConfidence: MinConfidence})

// Decode converts data to UTF-8 text.
func (d *Decoder) Decode(data []byte) Result {
	for _, s := range d.strategies {
		if res, ok := s.Decode(data); ok {
			res.Strategy = s.Name()
			return res
		}
	}
	res := fallback(data)
	res.Strategy = FallbackStrategy
	return res
}

// Bytes decodes data with the Default chain.
func Bytes(data []byte) Result {
	return Default.Decode(data)
}

// BOMStrategy recognizes UTF-8 and UTF-16 byte-order marks.
type BOMStrategy struct{}

// Name returns the strategy name.
func (BOMStrategy) Name() string { return "bom" }

// Decode strips a byte-order mark and decodes the remainder.
func (BOMStrategy) Decode(data []byte) (Result, bool) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		rest := data[3:]
		if utf8.Valid(rest) {
			return Result{Text: string(rest), Encoding: EncodingUTF8BOM}, true
		}
		return Result{Text: strings.ToValidUTF8(string(rest), "�"), Encoding: EncodingUTF8BOM, Fallback: true}, true
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), EncodingUTF16LE, data)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), EncodingUTF16BE, data)
	}
	return Result{}, false
}

// UTF8Strategy accepts data that is already valid UTF-8.
type UTF8Strategy struct{}

// Name returns the strategy name.
func (UTF8Strategy) Name() string { return "utf8" }

// Decode returns data unchanged when it is valid UTF-8.
func (UTF8Strategy) Decode(data []byte) (Result, bool) {
	if !utf8.Valid(data) {
		return Result{}, false
	}
	return Result{Text: string(data), Encoding: EncodingUTF8}, true
}

// DetectorStrategy guesses the charset statistically.
type DetectorStrategy struct {
	MinConfidence int
}

// Name returns the strategy name.
func (DetectorStrategy) Name() string { return "detect" }

// Decode uses the best detector guess when it is confident enough and maps to a known decoder.
func (s DetectorStrategy) Decode(data []byte) (Result, bool) {
	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || best == nil || best.Confidence < s.MinConfidence {
		return Result{}, false
	}
	enc, err := htmlindex.Get(best.Charset)
	if err != nil {
		return Result{}, false
	}
	return decodeWith(enc, best.Charset, data)
}

func decodeWith(enc encoding.Encoding, name string, data []byte) (Result, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return Result{}, false
	}
	return Result{Text: string(out), Encoding: name}, true
}

// fallback decodes text-like data as Windows-1252 and anything with NUL bytes as lossy UTF-8.
func fallback(data []byte) Result {
	if bytes.IndexByte(data, 0) < 0 {
		if res, ok := decodeWith(charmap.Windows1252, EncodingWindows1252, data); ok {
			res.Fallback = true
			return res
		}
	}
	return Result{Text: strings.ToValidUTF8(string(data), "�"), Encoding: EncodingLossyUTF8, Fallback: true}
}
