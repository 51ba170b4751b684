package request

import (
	"encoding/json"
	"fmt"

	"github.com/yumyai/ggview/pkg/model"
)

// Mount payload: the host-side configuration for one view. A track entry may
// be a bare source string, a [data, index] pair, or a full option object.
type ViewRequest struct {
	Genome model.GenomeReference `json:"genome"`
	Locus  model.Locus           `json:"locus"`
	Tracks []TrackEntry          `json:"tracks"`
}

// Save payload: a view configuration plus the name to keep it under.
type SaveViewRequest struct {
	Name string `json:"name"`
	ViewRequest
}

type TrackEntry struct {
	URL      string
	IndexURL string
	Options  *model.TrackOptions
}

func (e *TrackEntry) UnmarshalJSON(b []byte) error {

	*e = TrackEntry{}

	// Bare source string
	var source string
	if err := json.Unmarshal(b, &source); err == nil {
		e.URL = source
		return nil
	}

	// [data, index] pair
	var pair []string
	if err := json.Unmarshal(b, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("track pair must be [data, index], got %d elements", len(pair))
		}
		e.URL = pair[0]
		e.IndexURL = pair[1]
		return nil
	}

	// Full object: url / indexURL plus display options, unknown keys pass
	// through to the renderer.
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("track entry must be a string, a [data, index] pair or an object")
	}

	take := func(key string, dst any) error {
		raw, ok := obj[key]
		if !ok {
			return nil
		}
		delete(obj, key)
		return json.Unmarshal(raw, dst)
	}

	opts := &model.TrackOptions{}

	if err := take("url", &e.URL); err != nil {
		return err
	}
	if err := take("indexURL", &e.IndexURL); err != nil {
		return err
	}
	if err := take("name", &opts.Name); err != nil {
		return err
	}
	if err := take("type", &opts.Type); err != nil {
		return err
	}
	if err := take("format", &opts.Format); err != nil {
		return err
	}
	if err := take("color", &opts.Color); err != nil {
		return err
	}
	if err := take("autoscale", &opts.Autoscale); err != nil {
		return err
	}
	if err := take("height", &opts.Height); err != nil {
		return err
	}

	if len(obj) > 0 {
		opts.Extra = make(map[string]any, len(obj))
		for k, raw := range obj {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			opts.Extra[k] = v
		}
	}

	e.Options = opts
	return nil
}

// BuildConfig assembles the model from the request, running track type
// inference on the way. Errors here are configuration errors (unknown
// format, missing source) and map to a 400 at the handler.
func (r *ViewRequest) BuildConfig() (*model.Config, error) {

	cfg := &model.Config{
		Genome: r.Genome,
		Locus:  r.Locus,
	}

	for i, entry := range r.Tracks {
		var err error
		if entry.IndexURL != "" {
			err = cfg.AddPairedTrack(entry.URL, entry.IndexURL, entry.Options)
		} else {
			err = cfg.AddTrack(entry.URL, entry.Options)
		}
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
	}

	return cfg, nil
}
