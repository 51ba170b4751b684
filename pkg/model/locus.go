// Locus string handling

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Region is a parsed coordinate range. Start/End are 1-based inclusive, the
// way the locus strings themselves read. End == 0 means the whole contig.
type Region struct {
	Contig string
	Start  uint64
	End    uint64
}

func (r Region) String() string {
	if r.End == 0 {
		return r.Contig
	}
	return fmt.Sprintf("%s:%d-%d", r.Contig, r.Start, r.End)
}

// ParseLocus accepts "chr17" or "chr17:31,531,100-31,531,259". Thousands
// separators are allowed in the coordinates.
func ParseLocus(locus string) (Region, error) {

	locus = strings.TrimSpace(locus)
	if locus == "" {
		return Region{}, fmt.Errorf("empty locus")
	}

	contig, coords, has_range := strings.Cut(locus, ":")
	if contig == "" {
		return Region{}, fmt.Errorf("locus %q has no contig", locus)
	}

	if !has_range {
		return Region{Contig: contig}, nil
	}

	start_str, end_str, ok := strings.Cut(coords, "-")
	if !ok {
		return Region{}, fmt.Errorf("locus %q: range must be start-end", locus)
	}

	start, err := strconv.ParseUint(strings.ReplaceAll(start_str, ",", ""), 10, 64)
	if err != nil {
		return Region{}, fmt.Errorf("locus %q: bad start: %w", locus, err)
	}

	end, err := strconv.ParseUint(strings.ReplaceAll(end_str, ",", ""), 10, 64)
	if err != nil {
		return Region{}, fmt.Errorf("locus %q: bad end: %w", locus, err)
	}

	if end < start {
		return Region{}, fmt.Errorf("locus %q: end before start", locus)
	}

	return Region{Contig: contig, Start: start, End: end}, nil
}

// Locus is one or more coordinate ranges, kept as the raw strings the user
// gave. The viewer accepts either a bare string or a list, so a single range
// marshals back to a plain string.
type Locus []string

func (l Locus) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]string(l))
}

func (l *Locus) UnmarshalJSON(b []byte) error {

	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*l = Locus{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = Locus(many)
	return nil
}

// Validate parses every range in the locus.
func (l Locus) Validate() error {
	for _, s := range l {
		if _, err := ParseLocus(s); err != nil {
			return err
		}
	}
	return nil
}
