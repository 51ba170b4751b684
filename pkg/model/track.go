// Track building and file-format inference

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Raised when a bare source has an extension outside of FORMAT_TABLE and no
// explicit type override is given.
var ErrUnknownTrackFormat = errors.New("unknown track format")

type TrackType string

const (
	TrackAnnotation TrackType = "annotation"
	TrackWig        TrackType = "wig"
	TrackAlignment  TrackType = "alignment"
	TrackVariant    TrackType = "variant"
	TrackSeg        TrackType = "seg"
)

type trackFormat struct {
	Format string
	Type   TrackType
}

// Fixed extension -> (format, track type) table. Lookup is done on the last
// path element, lowercased, after stripping a compression suffix.
var FORMAT_TABLE = map[string]trackFormat{
	"bed":      {"bed", TrackAnnotation},
	"gff":      {"gff", TrackAnnotation},
	"gff3":     {"gff3", TrackAnnotation},
	"gtf":      {"gtf", TrackAnnotation},
	"genepred": {"genePred", TrackAnnotation},
	"bedpe":    {"bedpe", TrackAnnotation},
	"bw":       {"bigwig", TrackWig},
	"bigwig":   {"bigwig", TrackWig},
	"wig":      {"wig", TrackWig},
	"bg":       {"bedGraph", TrackWig},
	"bedgraph": {"bedGraph", TrackWig},
	"tdf":      {"tdf", TrackWig},
	"bam":      {"bam", TrackAlignment},
	"cram":     {"cram", TrackAlignment},
	"sam":      {"sam", TrackAlignment},
	"vcf":      {"vcf", TrackVariant},
	"seg":      {"seg", TrackSeg},
}

// One data layer in the browser. URL / IndexURL pairing is explicit: IndexURL
// is only ever set from a paired (data, index) input, never guessed from the
// data reference.
type Track struct {
	Name      string
	URL       string
	IndexURL  string
	Type      TrackType
	Format    string
	Color     string
	Autoscale bool
	Height    int
	// Renderer-specific passthrough options, merged flat into the track JSON.
	Extra map[string]any
}

// Display options for a track. Zero values mean "not given"; explicit values
// always win over anything inferred from the source extension.
type TrackOptions struct {
	Name      string
	Type      TrackType
	Format    string
	Color     string
	Autoscale bool
	Height    int
	Extra     map[string]any
}

// IsHref reports whether a source is a remote reference rather than a local
// file path.
func IsHref(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// sourceExt returns the extension FORMAT_TABLE is keyed on. Query strings and
// fragments are dropped first, then one .gz / .bgz compression suffix.
func sourceExt(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}

	base := strings.ToLower(path.Base(source))
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".bgz")

	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// NewTrack builds a track from a bare source reference. The track type comes
// from FORMAT_TABLE unless opts carries an explicit type.
func NewTrack(source string, opts *TrackOptions) (*Track, error) {

	if source == "" {
		return nil, fmt.Errorf("track source is empty")
	}

	t := &Track{URL: source}

	ext := sourceExt(source)
	known, ok := FORMAT_TABLE[ext]

	if ok {
		t.Type = known.Type
		t.Format = known.Format
	}

	if opts != nil {
		t.applyOptions(opts)
	}

	// An unrecognized extension is only an error when nothing overrides it.
	if t.Type == "" {
		return nil, fmt.Errorf("%w: %q (extension %q)", ErrUnknownTrackFormat, source, ext)
	}

	// Display name defaults to the filename for local sources, the full URL
	// for remote ones.
	if t.Name == "" {
		if IsHref(source) {
			t.Name = source
		} else {
			t.Name = path.Base(source)
		}
	}

	return t, nil
}

// NewPairedTrack builds a track from an explicit (data, index) pair. Both
// references are kept distinct on the result.
func NewPairedTrack(data, index string, opts *TrackOptions) (*Track, error) {

	if index == "" {
		return nil, fmt.Errorf("paired track %q is missing its index reference", data)
	}

	t, err := NewTrack(data, opts)
	if err != nil {
		return nil, err
	}

	t.IndexURL = index
	return t, nil
}

func (t *Track) applyOptions(opts *TrackOptions) {
	if opts.Name != "" {
		t.Name = opts.Name
	}
	if opts.Type != "" {
		t.Type = opts.Type
	}
	if opts.Format != "" {
		t.Format = opts.Format
	}
	if opts.Color != "" {
		t.Color = opts.Color
	}
	if opts.Autoscale {
		t.Autoscale = true
	}
	if opts.Height > 0 {
		t.Height = opts.Height
	}
	if len(opts.Extra) > 0 {
		if t.Extra == nil {
			t.Extra = make(map[string]any, len(opts.Extra))
		}
		for k, v := range opts.Extra {
			t.Extra[k] = v
		}
	}
}

// MarshalJSON emits the flat camelCase object the embedded viewer consumes.
// Extra keys go in first so that the named fields win on collision.
func (t *Track) MarshalJSON() ([]byte, error) {

	obj := make(map[string]any, len(t.Extra)+8)

	for k, v := range t.Extra {
		obj[k] = v
	}

	obj["url"] = t.URL

	if t.IndexURL != "" {
		obj["indexURL"] = t.IndexURL
	}
	if t.Type != "" {
		obj["type"] = t.Type
	}
	if t.Format != "" {
		obj["format"] = t.Format
	}
	if t.Name != "" {
		obj["name"] = t.Name
	}
	if t.Color != "" {
		obj["color"] = t.Color
	}
	if t.Autoscale {
		obj["autoscale"] = true
	}
	if t.Height > 0 {
		obj["height"] = t.Height
	}

	return json.Marshal(obj)
}

func (t *Track) UnmarshalJSON(b []byte) error {

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}

	*t = Track{}

	take := func(key string, dst any) error {
		raw, ok := obj[key]
		if !ok {
			return nil
		}
		delete(obj, key)
		return json.Unmarshal(raw, dst)
	}

	if err := take("url", &t.URL); err != nil {
		return err
	}
	if err := take("indexURL", &t.IndexURL); err != nil {
		return err
	}
	if err := take("type", &t.Type); err != nil {
		return err
	}
	if err := take("format", &t.Format); err != nil {
		return err
	}
	if err := take("name", &t.Name); err != nil {
		return err
	}
	if err := take("color", &t.Color); err != nil {
		return err
	}
	if err := take("autoscale", &t.Autoscale); err != nil {
		return err
	}
	if err := take("height", &t.Height); err != nil {
		return err
	}

	// Whatever is left is renderer passthrough.
	if len(obj) > 0 {
		t.Extra = make(map[string]any, len(obj))
		for k, raw := range obj {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			t.Extra[k] = v
		}
	}

	return nil
}

// Clone returns a deep copy, so a mounted snapshot does not alias builder
// state.
func (t *Track) Clone() *Track {
	c := *t
	if t.Extra != nil {
		c.Extra = make(map[string]any, len(t.Extra))
		for k, v := range t.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}
