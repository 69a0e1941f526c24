package ballot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/stv/internal/ir"
)

// Format identifies an election file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
	FormatJSON Format = "json"
)

// Options controls loading.
type Options struct {
	CSV CSVOptions
}

// Loaded is an election read from a file together with any counting rules
// the file declares.
type Loaded struct {
	Election ir.Election

	// Config holds the file's seats, quota and tie_break. Zero fields were
	// not declared; CSV files never declare any.
	Config ir.TallyConfig

	Format Format
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported election file extension %q (want .csv, .yaml, .yml, .cue or .json)", filepath.Ext(path))
	}
}

// Load reads an election file, choosing the decoder by extension.
func Load(path string, opts Options) (*Loaded, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read election file: %w", err)
	}

	return Decode(data, format, filepath.Base(path), opts)
}

// Decode parses election data in the given format. name labels errors
// and, for CSV, becomes the election title.
func Decode(data []byte, format Format, name string, opts Options) (*Loaded, error) {
	if format == FormatCSV {
		csvOpts := opts.CSV
		if csvOpts.File == "" {
			csvOpts.File = name
		}
		election, err := ReadCSV(bytes.NewReader(data), csvOpts)
		if err != nil {
			return nil, err
		}
		election.Title = strings.TrimSuffix(name, filepath.Ext(name))
		return &Loaded{Election: election, Format: format}, nil
	}

	var (
		doc Document
		err error
	)
	switch format {
	case FormatYAML:
		doc, err = DecodeYAML(data, name)
	case FormatCUE:
		doc, err = DecodeCUE(data, name)
	case FormatJSON:
		doc, err = DecodeJSON(data, name)
	default:
		return nil, fmt.Errorf("unsupported election format %q", format)
	}
	if err != nil {
		return nil, err
	}

	election, err := doc.Election()
	if err != nil {
		return nil, withFile(err, name)
	}
	return &Loaded{Election: election, Config: doc.Config(), Format: format}, nil
}

func withFile(err error, file string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.File == "" {
		pe.File = file
	}
	return err
}
