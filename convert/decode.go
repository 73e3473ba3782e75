package convert

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/ilri/cgmerge/schema/canonical"
	"github.com/ilri/cgmerge/schema/contentdm"
	"github.com/ilri/cgmerge/schema/dspace"
	"github.com/ilri/cgmerge/schema/eprints"
	"github.com/segmentio/encoding/json"
)

// maxLineSize limits a single JSON line; DSpace items with many bitstreams
// can get large.
const maxLineSize = 64 * 1024 * 1024

// NewRecord returns an empty raw record, that a harvested JSON document of
// the given source decodes into.
func NewRecord(source canonical.Source) (Raw, error) {
	switch source {
	case canonical.CGSpace, canonical.WorldFish, canonical.CIFOR, canonical.CIMMYT:
		return new(dspace.Item), nil
	case canonical.MELSpace:
		return new(dspace.LegacyItem), nil
	case canonical.IFPRI:
		return new(contentdm.Item), nil
	case canonical.ICRISAT:
		return new(eprints.Item), nil
	case canonical.IRRI:
		return make(CSVRecord), nil
	default:
		return nil, fmt.Errorf("%w: %s", canonical.ErrUnknownSource, source)
	}
}

func decodeRecord(source canonical.Source, b []byte) (Raw, error) {
	raw, err := NewRecord(source)
	if err != nil {
		return nil, err
	}
	if rec, ok := raw.(CSVRecord); ok {
		err = json.Unmarshal(b, &rec)
		return rec, err
	}
	if err := json.Unmarshal(b, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeDocument decodes one JSON document into records. A DSpace 7 discover
// search page yields all items of the page.
func decodeDocument(source canonical.Source, b []byte) ([]Raw, error) {
	raw, err := NewRecord(source)
	if err != nil {
		return nil, err
	}
	if _, ok := raw.(*dspace.Item); ok && bytes.Contains(b, []byte(`"searchResult"`)) {
		var page dspace.DiscoverResponse
		if err := json.Unmarshal(b, &page); err != nil {
			return nil, err
		}
		if page.IsSearchResult() {
			items := page.Items()
			result := make([]Raw, len(items))
			for i := range items {
				result[i] = &items[i]
			}
			return result, nil
		}
	}
	raw, err = decodeRecord(source, b)
	if err != nil {
		return nil, err
	}
	return []Raw{raw}, nil
}

// DecodeRecords reads raw records of a source, either as a single JSON array
// or as newline delimited JSON. Blank lines are skipped. For DSpace 7 sources
// a document may also be a saved discover search page.
func DecodeRecords(r io.Reader, source canonical.Source) ([]Raw, error) {
	if _, err := NewRecord(source); err != nil {
		return nil, err
	}
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result []Raw
	if first == '[' {
		b, err := io.ReadAll(br)
		if err != nil {
			return nil, err
		}
		var docs []json.RawMessage
		if err := json.Unmarshal(b, &docs); err != nil {
			return nil, err
		}
		for i, doc := range docs {
			raws, err := decodeDocument(source, doc)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			result = append(result, raws...)
		}
		return result, nil
	}
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineSize)
	var lineno int
	for scanner.Scan() {
		lineno++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		raws, err := decodeDocument(source, line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		result = append(result, raws...)
	}
	return result, scanner.Err()
}

// peekNonSpace discards leading whitespace and returns the next byte
// without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
