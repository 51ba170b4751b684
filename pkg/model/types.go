package model

import "encoding/json"

// GenomeReference is either a registered assembly name ("mm10", "hg38") or a
// custom reference described by its sequence files. ID alone marshals as a
// bare string so registered assemblies stay the short form the viewer expects.
type GenomeReference struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	FastaURL    string `json:"fastaURL,omitempty"`
	IndexURL    string `json:"indexURL,omitempty"`
	CytobandURL string `json:"cytobandURL,omitempty"`
}

func (g GenomeReference) IsZero() bool {
	return g == GenomeReference{}
}

// custom reports whether this is a file-backed reference rather than a
// registered assembly id.
func (g GenomeReference) custom() bool {
	return g.FastaURL != "" || g.IndexURL != "" || g.CytobandURL != ""
}

func (g GenomeReference) MarshalJSON() ([]byte, error) {
	if !g.custom() {
		return json.Marshal(g.ID)
	}

	type plain GenomeReference
	return json.Marshal(plain(g))
}

func (g *GenomeReference) UnmarshalJSON(b []byte) error {

	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*g = GenomeReference{ID: id}
		return nil
	}

	type plain GenomeReference
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*g = GenomeReference(p)
	return nil
}

// Config is the whole synchronized view model: reference genome, initial
// locus and the ordered track list. The bridge always reads it as one
// snapshot; there is no partial update contract.
type Config struct {
	Genome GenomeReference `json:"genome"`
	Locus  Locus           `json:"locus,omitempty"`
	Tracks []*Track        `json:"tracks"`
}
