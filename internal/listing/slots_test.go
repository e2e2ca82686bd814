package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKeyNames(t *testing.T) {
	tests := []struct {
		key   SlotKey
		field string
		label string
	}{
		{SlotKey{Category: CategoryKitchen}, "kitchen", "Kitchen"},
		{SlotKey{Category: CategoryLivingRoom}, "living-room", "Living Room"},
		{SlotKey{Category: CategoryBedroom, Index: 2}, "bedroom2", "Bedroom 2"},
		{SlotKey{Category: CategoryExtraRoom, Room: "Pooja Room"}, "extraroom-pooja-room", "Pooja Room"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.field, tt.key.FieldName())
			assert.Equal(t, tt.label, tt.key.Label())
		})
	}
}

func TestDeriveSlots(t *testing.T) {
	slots := DeriveSlots(Features{Bedrooms: 2, Bathrooms: 1, Balconies: 0, ExtraRooms: []string{"Study Room", "Pooja Room", "Study Room"}})

	var names []string
	for _, k := range slots {
		names = append(names, k.FieldName())
	}
	assert.Equal(t, []string{
		"exterior", "living-room", "kitchen", "dining", "floor-plan", "master-plan", "location-map",
		"bedroom1", "bedroom2", "bathroom1",
		"extraroom-pooja-room", "extraroom-study-room",
	}, names)
}

func TestMediaRegenerate(t *testing.T) {
	m := newMedia(DeriveSlots(Features{Bedrooms: 2, ExtraRooms: []string{"Store Room"}}))
	store := SlotKey{Category: CategoryExtraRoom, Room: "Store Room"}
	require.NoError(t, m.set(SlotKey{Category: CategoryBedroom, Index: 1}, "b1"))
	require.NoError(t, m.set(store, "s"))
	require.NoError(t, m.set(SlotKey{Category: CategoryKitchen}, "k"))

	dropped := m.regenerate(DeriveSlots(Features{Bedrooms: 3}))
	assert.Equal(t, []SlotKey{store}, dropped)
	assert.Equal(t, MediaRef("b1"), m.Ref(SlotKey{Category: CategoryBedroom, Index: 1}))
	assert.Equal(t, MediaRef("k"), m.Ref(SlotKey{Category: CategoryKitchen}))
	assert.True(t, m.Has(SlotKey{Category: CategoryBedroom, Index: 3}))
	assert.Equal(t, map[string]MediaRef{"bedroom1": "b1", "kitchen": "k"}, m.FieldMap())

	// Re-adding the room does not resurrect the old reference.
	m.regenerate(DeriveSlots(Features{Bedrooms: 3, ExtraRooms: []string{"Store Room"}}))
	assert.Empty(t, m.Ref(store))

	assert.ErrorIs(t, m.set(SlotKey{Category: CategoryBalcony, Index: 1}, "x"), ErrUnknownSlot)
}

func TestMediaLookup(t *testing.T) {
	m := newMedia(DeriveSlots(Features{Bathrooms: 2}))
	k, ok := m.Lookup("bathroom2")
	require.True(t, ok)
	assert.Equal(t, SlotKey{Category: CategoryBathroom, Index: 2}, k)

	_, ok = m.Lookup("bathroom3")
	assert.False(t, ok)
}

func TestDeriveSlotsOutOfRangeCounts(t *testing.T) {
	tests := []struct {
		name string
		f    Features
		want int
	}{
		{"negative", Features{Bedrooms: -20, Bathrooms: -1, Balconies: -3}, len(singleCategories)},
		{"huge", Features{Bedrooms: 9999999999999999, Bathrooms: 1 << 40, Balconies: 1 << 62}, len(singleCategories) + 3*MaxRoomCount},
		{"at bound", Features{Bedrooms: MaxRoomCount}, len(singleCategories) + MaxRoomCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, DeriveSlots(tt.f), tt.want)
		})
	}
}

func TestDeriveSlotsExtraRoomNameCollisions(t *testing.T) {
	slots := DeriveSlots(Features{ExtraRooms: []string{"!!!", "???", "Study Room", "study-room"}})

	var names []string
	for _, k := range slots[len(singleCategories):] {
		names = append(names, k.FieldName())
	}
	assert.Equal(t, []string{"extraroom-study-room"}, names)

	m := newMedia(slots)
	k, ok := m.Lookup("extraroom-study-room")
	require.True(t, ok)
	assert.Equal(t, "Study Room", k.Room)
	_, ok = m.Lookup("extraroom-")
	assert.False(t, ok)
}
