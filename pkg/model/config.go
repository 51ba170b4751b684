// Builder operations for assembling a view configuration

package model

import (
	"encoding/json"
	"fmt"
)

// NewConfig starts a configuration on a registered assembly.
func NewConfig(genome string) *Config {
	return &Config{Genome: GenomeReference{ID: genome}}
}

// SetGenome replaces the reference genome. The change only reaches a live
// view through a fresh mount.
func (c *Config) SetGenome(genome GenomeReference) *Config {
	c.Genome = genome
	return c
}

// SetLocus replaces the initial locus with one or more coordinate ranges.
func (c *Config) SetLocus(loci ...string) *Config {
	c.Locus = Locus(loci)
	return c
}

// AddTrack appends a track built from a bare source reference. Track order is
// display order.
func (c *Config) AddTrack(source string, opts *TrackOptions) error {
	t, err := NewTrack(source, opts)
	if err != nil {
		return err
	}
	c.Tracks = append(c.Tracks, t)
	return nil
}

// AddPairedTrack appends a track from an explicit (data, index) pair.
func (c *Config) AddPairedTrack(data, index string, opts *TrackOptions) error {
	t, err := NewPairedTrack(data, index, opts)
	if err != nil {
		return err
	}
	c.Tracks = append(c.Tracks, t)
	return nil
}

// Validate is what the engine runs before creating an instance: genome set,
// every locus parseable, every track with a source.
func (c *Config) Validate() error {

	if c.Genome.IsZero() {
		return fmt.Errorf("config has no reference genome")
	}

	if err := c.Locus.Validate(); err != nil {
		return err
	}

	for i, t := range c.Tracks {
		if t == nil || t.URL == "" {
			return fmt.Errorf("track %d has no source", i)
		}
	}

	return nil
}

// Snapshot deep-copies the configuration, so a mounted view never aliases the
// builder the host keeps mutating.
func (c *Config) Snapshot() *Config {

	snap := &Config{Genome: c.Genome}

	if c.Locus != nil {
		snap.Locus = append(Locus(nil), c.Locus...)
	}

	if c.Tracks != nil {
		snap.Tracks = make([]*Track, len(c.Tracks))
		for i, t := range c.Tracks {
			snap.Tracks[i] = t.Clone()
		}
	}

	return snap
}

func (c *Config) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

func ConfigFromJSON(b []byte) (*Config, error) {
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("bad view config: %w", err)
	}
	return &c, nil
}
