// Package listsource implements the ListFetcher port for the published CSV
// blocklist, either as a raw file URL or through the GitHub contents API.
package listsource

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ericfisherdev/artistban/internal/domain/model"
)

// Parse reads a blocklist body. The first line is a header and is skipped.
// Every other line is "<name>,<id>"; fields past the second are ignored and
// lines without two non-empty trimmed fields are dropped. Order is preserved
// and duplicates are kept.
func Parse(r io.Reader) ([]model.ListRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	records := []model.ListRecord{}
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}

		fields := strings.Split(scanner.Text(), ",")
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimSpace(fields[0])
		id := strings.TrimSpace(fields[1])
		if name == "" || id == "" {
			continue
		}
		records = append(records, model.ListRecord{DisplayName: name, ExternalID: id})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}

	return records, nil
}
