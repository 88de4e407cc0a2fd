package rules

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format identifies a rule document encoding
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
)

// maxRuleBytes caps the decompressed size of a single rule document
const maxRuleBytes = 16 << 20

var extFormats = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
}

// DetectFormat picks a format from the file name, falling back to content
// sniffing. Sniffed JSON is decoded as JSON and any other text as YAML;
// TOML must be named with a .toml extension.
func DetectFormat(name string, raw []byte) Format {
	name = trimCompressionSuffix(name)
	if f, ok := extFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}

	mtype := mimetype.Detect(raw)
	switch {
	case mtype.Is("application/json"):
		return FormatJSON
	case strings.HasPrefix(mtype.String(), "text/"):
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// decompress inflates gzip or zstd payloads, detected by content.
// Anything else is returned as is.
func decompress(raw []byte) ([]byte, error) {
	mtype := mimetype.Detect(raw)

	switch {
	case mtype.Is("application/gzip"):
		gzReader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gzReader.Close()
		return readLimited(gzReader)
	case mtype.Is("application/zstd"):
		zstdReader, err := zstd.NewReader(bytes.NewReader(raw), zstd.WithDecoderMaxMemory(maxRuleBytes))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zstdReader.Close()
		return readLimited(zstdReader)
	default:
		return raw, nil
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxRuleBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxRuleBytes {
		return nil, fmt.Errorf("rule document exceeds %d bytes", maxRuleBytes)
	}
	return data, nil
}

func trimCompressionSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range []string{".gz", ".zst"} {
		if strings.HasSuffix(lower, suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}
