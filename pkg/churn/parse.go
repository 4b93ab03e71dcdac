package churn

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TableHeader is the first line of a churn table.
const TableHeader = "count\tfile"

const fieldSeparator = "\t"

// ParseChurnTable parses "count<TAB>path" lines following a header line.
// A non-numeric count parses as 0. Blank lines and lines without a path are skipped.
// Paths containing tabs or newlines are not supported.
func ParseChurnTable(text string) []Record {
	scanner := bufio.NewScanner(strings.NewReader(text))

	var records []Record

	first := true

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if first {
			first = false

			if line == TableHeader {
				continue
			}
		}

		if line == "" {
			continue
		}

		count, path, found := strings.Cut(line, fieldSeparator)
		if !found || path == "" {
			continue
		}

		churn, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || churn < 0 {
			churn = 0
		}

		records = append(records, Record{Path: path, Churn: churn})
	}

	return records
}

// ParseNameOnly tallies the paths printed by `git log --name-only --format=format:`.
// Records are sorted ascending by count, ties by path.
func ParseNameOnly(text string) []Record {
	counts := make(map[string]int)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLogLine)

	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path == "" {
			continue
		}

		counts[path]++
	}

	return RecordsFromCounts(counts)
}

// maxLogLine bounds a single path line in log output.
const maxLogLine = 1 << 20

// RecordsFromCounts converts a path tally into records sorted ascending by
// count, ties by path.
func RecordsFromCounts(counts map[string]int) []Record {
	records := make([]Record, 0, len(counts))

	for path, n := range counts {
		records = append(records, Record{Path: path, Churn: n})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Churn != records[j].Churn {
			return records[i].Churn < records[j].Churn
		}

		return records[i].Path < records[j].Path
	})

	return records
}

// FormatChurnTable renders records in the format read by ParseChurnTable.
func FormatChurnTable(records []Record) string {
	var sb strings.Builder

	sb.WriteString(TableHeader)
	sb.WriteByte('\n')

	for _, r := range records {
		fmt.Fprintf(&sb, "%d%s%s\n", r.Churn, fieldSeparator, r.Path)
	}

	return sb.String()
}
