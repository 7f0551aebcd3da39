package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Column names required in the lookup table header. Matched case-sensitively
// after trimming; order in the file is irrelevant.
const (
	columnCode   = "Kode_DP"
	columnCity   = "City"
	columnRegion = "RK"
)

// LoadLookup reads the master lookup table from path. The delimiter is
// auto-detected (comma, semicolon or tab). Rows with any required field
// blank are skipped; duplicate codes keep the last occurrence. A missing
// file, missing header columns, or zero usable rows all fail the load.
func LoadLookup(path string) (Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, &DataLoadError{Path: path, Err: errors.New("file is empty")}
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return nil, &DataLoadError{Path: path, Err: errors.New("no header row")}
	}

	codeIdx, cityIdx, regionIdx := -1, -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(name) {
		case columnCode:
			codeIdx = i
		case columnCity:
			cityIdx = i
		case columnRegion:
			regionIdx = i
		}
	}
	if codeIdx < 0 || cityIdx < 0 || regionIdx < 0 {
		return nil, &DataLoadError{
			Path: path,
			Err: fmt.Errorf("header must contain columns %q, %q and %q",
				columnCode, columnCity, columnRegion),
		}
	}

	lookup := make(Lookup)
	for i, record := range records[1:] {
		code := fieldAt(record, codeIdx)
		city := fieldAt(record, cityIdx)
		region := fieldAt(record, regionIdx)
		if code == "" || city == "" || region == "" {
			continue
		}
		lookup[code] = Entry{City: city, Region: region, Row: i + 2}
	}

	if len(lookup) == 0 {
		return nil, &DataLoadError{Path: path, Err: errors.New("no usable rows")}
	}
	return lookup, nil
}

// detectDelimiter picks the delimiter with the most occurrences in the
// header line. Comma wins ties and is the fallback.
func detectDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}

	delim := ','
	best := strings.Count(header, ",")
	for _, c := range []rune{';', '\t'} {
		if n := strings.Count(header, string(c)); n > best {
			best = n
			delim = c
		}
	}
	return delim
}

func fieldAt(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
