package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario: mm10 view over one annotation and one coverage track.
func TestBuildConfigFromBareSources(t *testing.T) {

	cfg := NewConfig("mm10").SetLocus("chr17:31,531,100-31,531,259")

	require.NoError(t, cfg.AddTrack("fragments.bed", nil))
	require.NoError(t, cfg.AddTrack("10x_cov.bw", nil))

	require.Len(t, cfg.Tracks, 2)
	assert.Equal(t, "mm10", cfg.Genome.ID)
	assert.Equal(t, Locus{"chr17:31,531,100-31,531,259"}, cfg.Locus)

	// Insertion order is display order
	assert.Equal(t, TrackAnnotation, cfg.Tracks[0].Type)
	assert.Equal(t, "fragments.bed", cfg.Tracks[0].URL)
	assert.Equal(t, TrackWig, cfg.Tracks[1].Type)
	assert.Equal(t, "10x_cov.bw", cfg.Tracks[1].URL)

	require.NoError(t, cfg.Validate())
}

func TestConfigJSONRoundTrip(t *testing.T) {

	cfg := NewConfig("hg38").SetLocus("chr8:127,736,588-127,739,371")
	require.NoError(t, cfg.AddPairedTrack("example.bam", "example.bam.bai", &TrackOptions{Name: "HG00103"}))

	b, err := cfg.ToJSON()
	require.NoError(t, err)

	back, err := ConfigFromJSON(b)
	require.NoError(t, err)

	assert.Equal(t, cfg.Genome, back.Genome)
	assert.Equal(t, cfg.Locus, back.Locus)
	require.Len(t, back.Tracks, 1)
	assert.Equal(t, "example.bam", back.Tracks[0].URL)
	assert.Equal(t, "example.bam.bai", back.Tracks[0].IndexURL)
}

func TestGenomeReferenceJSON(t *testing.T) {

	// Registered assembly stays a bare string
	b, err := json.Marshal(GenomeReference{ID: "mm10"})
	require.NoError(t, err)
	assert.JSONEq(t, `"mm10"`, string(b))

	// Custom reference is the full object
	custom := GenomeReference{
		ID:       "pythium_v3",
		FastaURL: "https://example.org/pythium_v3.fa",
		IndexURL: "https://example.org/pythium_v3.fa.fai",
	}
	b, err = json.Marshal(custom)
	require.NoError(t, err)

	var back GenomeReference
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, custom, back)

	// And the string form parses back into an id-only reference
	var id_only GenomeReference
	require.NoError(t, json.Unmarshal([]byte(`"hg38"`), &id_only))
	assert.Equal(t, GenomeReference{ID: "hg38"}, id_only)
}

func TestLocusJSON(t *testing.T) {

	one, err := json.Marshal(Locus{"chr17:1-100"})
	require.NoError(t, err)
	assert.JSONEq(t, `"chr17:1-100"`, string(one))

	many, err := json.Marshal(Locus{"chr17:1-100", "chr8"})
	require.NoError(t, err)
	assert.JSONEq(t, `["chr17:1-100","chr8"]`, string(many))

	var l Locus
	require.NoError(t, json.Unmarshal([]byte(`"chrX:5-10"`), &l))
	assert.Equal(t, Locus{"chrX:5-10"}, l)
}

func TestParseLocus(t *testing.T) {

	r, err := ParseLocus("chr17:31,531,100-31,531,259")
	require.NoError(t, err)
	assert.Equal(t, Region{Contig: "chr17", Start: 31531100, End: 31531259}, r)

	r, err = ParseLocus("chr8")
	require.NoError(t, err)
	assert.Equal(t, Region{Contig: "chr8"}, r)

	for _, bad := range []string{"", ":1-2", "chr1:5", "chr1:a-b", "chr1:100-5"} {
		_, err := ParseLocus(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateCatchesBadConfig(t *testing.T) {

	var empty Config
	assert.Error(t, empty.Validate())

	bad_locus := NewConfig("mm10").SetLocus("chr1:100-5")
	assert.Error(t, bad_locus.Validate())

	bad_track := NewConfig("mm10")
	bad_track.Tracks = append(bad_track.Tracks, &Track{})
	assert.Error(t, bad_track.Validate())
}

func TestSnapshotIsDeepCopy(t *testing.T) {

	cfg := NewConfig("mm10").SetLocus("chr1")
	require.NoError(t, cfg.AddTrack("a.bed", nil))

	snap := cfg.Snapshot()

	cfg.SetLocus("chr2")
	cfg.Tracks[0].Name = "changed"

	assert.Equal(t, Locus{"chr1"}, snap.Locus)
	assert.Equal(t, "a.bed", snap.Tracks[0].Name)
}
