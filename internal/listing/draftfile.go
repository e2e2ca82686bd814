package listing

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// draftFile is the on-disk YAML form of a draft. Media is keyed by wire
// field name so the file stays hand-editable.
type draftFile struct {
	PropertyID       string              `yaml:"property_id,omitempty"`
	BasicInfo        BasicInfo           `yaml:"basic_info"`
	Location         Location            `yaml:"location"`
	Features         Features            `yaml:"features"`
	SocietyAmenities SocietyAmenities    `yaml:"society_amenities"`
	FlatAmenities    FlatAmenities       `yaml:"flat_amenities"`
	Restrictions     Restrictions        `yaml:"restrictions"`
	Commercials      Commercials         `yaml:"commercials"`
	Availability     Availability        `yaml:"availability"`
	Media            map[string]MediaRef `yaml:"media,omitempty"`
}

// DecodeDraft reads a YAML draft and returns it with its property id, if
// one was recorded. Media entries must name slots the features declare.
func DecodeDraft(r io.Reader) (Draft, string, error) {
	var f draftFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return Draft{}, "", fmt.Errorf("failed to parse draft: %w", err)
	}

	d := Draft{
		BasicInfo:        f.BasicInfo,
		Location:         f.Location,
		Features:         f.Features,
		SocietyAmenities: f.SocietyAmenities,
		FlatAmenities:    f.FlatAmenities,
		Restrictions:     f.Restrictions,
		Commercials:      f.Commercials,
		Availability:     f.Availability,
	}
	d.Features.ExtraRooms = NormalizeSet(d.Features.ExtraRooms)
	d.SocietyAmenities.Amenities = NormalizeSet(d.SocietyAmenities.Amenities)
	d.FlatAmenities.Amenities = NormalizeSet(d.FlatAmenities.Amenities)
	d.Media = newMedia(DeriveSlots(d.Features))

	names := make([]string, 0, len(f.Media))
	for name := range f.Media {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key, ok := d.Media.Lookup(name)
		if !ok {
			return Draft{}, "", fmt.Errorf("%w: %s", ErrUnknownSlot, name)
		}
		if err := d.Media.set(key, f.Media[name]); err != nil {
			return Draft{}, "", err
		}
	}
	return d, f.PropertyID, nil
}

// EncodeDraft writes d as YAML.
func EncodeDraft(w io.Writer, d Draft, propertyID string) error {
	f := draftFile{
		PropertyID:       propertyID,
		BasicInfo:        d.BasicInfo,
		Location:         d.Location,
		Features:         d.Features,
		SocietyAmenities: d.SocietyAmenities,
		FlatAmenities:    d.FlatAmenities,
		Restrictions:     d.Restrictions,
		Commercials:      d.Commercials,
		Availability:     d.Availability,
		Media:            d.Media.FieldMap(),
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return enc.Close()
}

// LoadDraft reads a draft file from path.
func LoadDraft(path string) (Draft, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return Draft{}, "", fmt.Errorf("failed to open draft: %w", err)
	}
	defer f.Close()
	return DecodeDraft(f)
}

// SaveDraft writes a draft file to path.
func SaveDraft(path string, d Draft, propertyID string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	if err := EncodeDraft(f, d, propertyID); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
