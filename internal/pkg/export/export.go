// Package export renders simple tables to downloadable files.
package export

import (
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts "xlsx"/"excel" and "pdf"; empty defaults to xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Table is a titled grid of cells. Cells may be strings, numbers, bools or nil.
type Table struct {
	Title   string
	Sheet   string
	Headers []string
	Rows    [][]any
}

// File is a rendered export ready to be written to a response.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render dispatches on format. name is the file name without extension.
func Render(t Table, format Format, name string) (File, error) {
	switch format {
	case FormatXLSX:
		data, err := renderXLSX(t)
		if err != nil {
			return File{}, err
		}
		return File{
			Name:        name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := renderPDF(t)
		if err != nil {
			return File{}, err
		}
		return File{
			Name:        name + ".pdf",
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	}
	return File{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func cellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case *string:
		if c == nil {
			return ""
		}
		return *c
	case *float64:
		if c == nil {
			return ""
		}
		return fmt.Sprintf("%g", *c)
	case float64:
		return fmt.Sprintf("%g", c)
	case bool:
		if c {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(c)
	}
}
