package listing

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MediaRef is an opaque server-returned locator for an uploaded file.
// The empty string means unset.
type MediaRef string

// Category groups media slots.
type Category string

// Single-slot categories.
const (
	CategoryExterior    Category = "exterior"
	CategoryLivingRoom  Category = "living-room"
	CategoryKitchen     Category = "kitchen"
	CategoryDining      Category = "dining"
	CategoryFloorPlan   Category = "floor-plan"
	CategoryMasterPlan  Category = "master-plan"
	CategoryLocationMap Category = "location-map"
)

// Repeated categories whose slots are derived from Features.
const (
	CategoryBedroom   Category = "bedroom"
	CategoryBathroom  Category = "bathroom"
	CategoryBalcony   Category = "balcony"
	CategoryExtraRoom Category = "extraroom"
)

var singleCategories = []Category{
	CategoryExterior,
	CategoryLivingRoom,
	CategoryKitchen,
	CategoryDining,
	CategoryFloorPlan,
	CategoryMasterPlan,
	CategoryLocationMap,
}

// titleCase capitalises each word. Casers are stateful, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// SlotKey addresses one media slot. Index is 1-based for counted categories
// and zero otherwise; Room is set only for extra rooms.
type SlotKey struct {
	Category Category
	Index    int
	Room     string
}

// FieldName returns the wire name of the slot sent as fieldName on upload.
func (k SlotKey) FieldName() string {
	switch {
	case k.Category == CategoryExtraRoom:
		return string(k.Category) + "-" + slug.Make(k.Room)
	case k.Index > 0:
		return fmt.Sprintf("%s%d", k.Category, k.Index)
	default:
		return string(k.Category)
	}
}

// Label returns a human label such as "Bedroom 2" or "Pooja Room".
func (k SlotKey) Label() string {
	switch {
	case k.Category == CategoryExtraRoom:
		return titleCase(k.Room)
	case k.Index > 0:
		return fmt.Sprintf("%s %d", titleCase(string(k.Category)), k.Index)
	default:
		return titleCase(strings.ReplaceAll(string(k.Category), "-", " "))
	}
}

// MaxRoomCount bounds bedrooms, bathrooms and balconies. Counts outside
// 0..MaxRoomCount derive no more slots than the bound and fail validation.
const MaxRoomCount = 20

// DeriveSlots computes the addressable slot set for the given features:
// the fixed categories followed by bedroom1..N, bathroom1..N, balcony1..N
// and one slot per declared extra room. Extra rooms whose wire names
// collide with an earlier slot, or are empty, get no slot.
func DeriveSlots(f Features) []SlotKey {
	counted := []struct {
		c Category
		n int
	}{
		{CategoryBedroom, clampCount(f.Bedrooms)},
		{CategoryBathroom, clampCount(f.Bathrooms)},
		{CategoryBalcony, clampCount(f.Balconies)},
	}
	rooms := NormalizeSet(f.ExtraRooms)

	size := len(singleCategories) + len(rooms)
	for _, ct := range counted {
		size += ct.n
	}
	keys := make([]SlotKey, 0, size)
	for _, c := range singleCategories {
		keys = append(keys, SlotKey{Category: c})
	}
	for _, ct := range counted {
		for i := 1; i <= ct.n; i++ {
			keys = append(keys, SlotKey{Category: ct.c, Index: i})
		}
	}
	seen := make(map[string]bool, len(rooms))
	for _, room := range rooms {
		key := SlotKey{Category: CategoryExtraRoom, Room: room}
		name := key.FieldName()
		if slug.Make(room) == "" || seen[name] {
			continue
		}
		seen[name] = true
		keys = append(keys, key)
	}
	return keys
}

func clampCount(n int) int {
	return min(max(0, n), MaxRoomCount)
}

// Media is the media slice: an ordered, addressable slot set and the
// references uploaded so far. Local files are never stored here.
type Media struct {
	slots []SlotKey
	refs  map[SlotKey]MediaRef
}

func newMedia(slots []SlotKey) Media {
	return Media{slots: slots, refs: make(map[SlotKey]MediaRef)}
}

// Slots returns the addressable slots in display order.
func (m Media) Slots() []SlotKey {
	return slices.Clone(m.slots)
}

// Has reports whether key is addressable.
func (m Media) Has(key SlotKey) bool {
	return slices.Contains(m.slots, key)
}

// Ref returns the reference stored at key, if any.
func (m Media) Ref(key SlotKey) MediaRef {
	return m.refs[key]
}

// Lookup resolves a wire field name (e.g. "bedroom2") to an addressable slot.
func (m Media) Lookup(fieldName string) (SlotKey, bool) {
	for _, k := range m.slots {
		if k.FieldName() == fieldName {
			return k, true
		}
	}
	return SlotKey{}, false
}

// Uploaded returns the number of slots holding a reference.
func (m Media) Uploaded() int {
	n := 0
	for _, k := range m.slots {
		if m.refs[k] != "" {
			n++
		}
	}
	return n
}

// FieldMap returns addressable, populated slots keyed by wire field name.
func (m Media) FieldMap() map[string]MediaRef {
	out := make(map[string]MediaRef)
	for _, k := range m.slots {
		if ref := m.refs[k]; ref != "" {
			out[k.FieldName()] = ref
		}
	}
	return out
}

// Clone returns a deep copy.
func (m Media) Clone() Media {
	c := Media{slots: slices.Clone(m.slots), refs: maps.Clone(m.refs)}
	if c.refs == nil {
		c.refs = make(map[SlotKey]MediaRef)
	}
	return c
}

// set writes ref at key. The key must be addressable.
func (m *Media) set(key SlotKey, ref MediaRef) error {
	if !m.Has(key) {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, key.FieldName())
	}
	if m.refs == nil {
		m.refs = make(map[SlotKey]MediaRef)
	}
	m.refs[key] = ref
	return nil
}

// regenerate replaces the addressable slot set. References on slots that
// survive are kept; references on dropped slots become unreachable.
func (m *Media) regenerate(slots []SlotKey) (dropped []SlotKey) {
	keep := make(map[SlotKey]struct{}, len(slots))
	for _, k := range slots {
		keep[k] = struct{}{}
	}
	for _, k := range m.slots {
		if _, ok := keep[k]; !ok {
			dropped = append(dropped, k)
		}
	}
	refs := make(map[SlotKey]MediaRef, len(slots))
	for _, k := range slots {
		if ref, ok := m.refs[k]; ok {
			refs[k] = ref
		}
	}
	m.slots = slots
	m.refs = refs
	return dropped
}
