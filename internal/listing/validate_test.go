package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

// completeDraft returns a draft that passes validation on every step.
func completeDraft() Draft {
	d := NewDraft()
	d.BasicInfo = BasicInfo{
		PropertyType:     "Apartment",
		Configuration:    "2 BHK",
		FurnishingStatus: "Unfurnished",
		Facing:           "North",
	}
	d.Location = Location{
		FlatNo:       "A-402",
		AddressLine1: "12th Main Road",
		Locality:     "Indiranagar",
		Area:         "Bengaluru East",
		PinCode:      "560038",
	}
	d.Features = Features{
		Bedrooms:    2,
		Bathrooms:   2,
		Balconies:   1,
		FloorNumber: ptr(4),
		TotalFloors: 10,
		SuperArea:   1350,
		BuiltUpArea: 1200,
		CarpetArea:  1000,
		PropertyAge: "1-5 years",
	}
	d.Restrictions = Restrictions{
		BachelorTenants:   Yes,
		NonVegTenants:     Yes,
		PetsAllowed:       No,
		CarParking:        Yes,
		CarParkingCount:   1,
		TwoWheelerParking: No,
		FlooringType:      "Marble",
	}
	d.Commercials = Commercials{
		MonthlyRent:     35000,
		Maintenance:     MaintenanceIncluded,
		SecurityDeposit: 100000,
	}
	d.Availability = Availability{AvailableFrom: "2026-11-01"}
	d.Media = newMedia(DeriveSlots(d.Features))
	return d
}

func TestValidateCompleteDraft(t *testing.T) {
	d := completeDraft()
	for _, step := range Steps() {
		assert.Empty(t, Validate(step, d), "step %s", step)
	}
}

func TestValidateEmptyDraft(t *testing.T) {
	d := NewDraft()
	tests := []struct {
		step Step
		want []string
	}{
		{StepBasicDetails, []string{"Property Type", "Configuration", "Furnishing Status", "Facing"}},
		{StepLocation, []string{"Flat No", "Address Line 1", "Locality", "Area", "Pin Code"}},
		{StepFeatures, []string{"Bedrooms", "Bathrooms", "Floor Number", "Total Floors", "Built-up Area", "Property Age"}},
		{StepSocietyAmenities, nil},
		{StepFlatAmenities, nil},
		{StepRestrictions, []string{"Bachelor Tenants", "Non-Veg Tenants", "Pets Allowed", "Car Parking", "Two Wheeler Parking", "Flooring Type"}},
		{StepCommercials, []string{"Monthly Rent", "Maintenance", "Security Deposit"}},
		{StepAvailability, []string{"Available From"}},
		{StepMedia, nil},
		{StepReview, nil},
	}
	for _, tt := range tests {
		t.Run(tt.step.ID(), func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.step, d))
		})
	}
}

func TestValidatePinCode(t *testing.T) {
	tests := []struct {
		pin   string
		valid bool
	}{
		{"560068", true},
		{" 560068 ", true},
		{"56006", false},
		{"5600681", false},
		{"56006a", false},
	}
	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			d := completeDraft()
			d.Location.PinCode = tt.pin
			got := Validate(StepLocation, d)
			if tt.valid {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, []string{"Pin Code (must be 6 digits)"}, got)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	d := completeDraft()
	d.Location.Latitude = ptr(12.97)
	assert.Equal(t, []string{"Coordinates"}, Validate(StepLocation, d), "latitude without longitude")

	d.Location.Longitude = ptr(77.59)
	assert.Empty(t, Validate(StepLocation, d))

	d.Location.Latitude = ptr(97.0)
	assert.Equal(t, []string{"Coordinates"}, Validate(StepLocation, d), "latitude out of range")
}

func TestValidateMaintenanceAmount(t *testing.T) {
	d := completeDraft()
	d.Commercials.Maintenance = MaintenanceExcluded
	d.Commercials.MaintenanceAmount = 0
	assert.Contains(t, Validate(StepCommercials, d), "Maintenance Amount")

	d.Commercials.Maintenance = MaintenanceIncluded
	assert.NotContains(t, Validate(StepCommercials, d), "Maintenance Amount")

	d.Commercials.Maintenance = MaintenanceExcluded
	d.Commercials.MaintenanceAmount = 2500
	assert.Empty(t, Validate(StepCommercials, d))
}

func TestValidateParkingCounts(t *testing.T) {
	d := completeDraft()
	d.Restrictions.CarParking = Yes
	d.Restrictions.CarParkingCount = 0
	d.Restrictions.TwoWheelerParking = Yes
	assert.Equal(t, []string{"Car Parking Count", "Two Wheeler Parking Count"}, Validate(StepRestrictions, d))

	d.Restrictions.CarParking = No
	d.Restrictions.TwoWheelerParking = No
	assert.Empty(t, Validate(StepRestrictions, d))
}

func TestValidatePowerBackup(t *testing.T) {
	d := completeDraft()
	d.SocietyAmenities.Amenities = []string{"Lift", AmenityPowerBackup}
	assert.Equal(t, []string{"Power Backup Type"}, Validate(StepSocietyAmenities, d))

	d.SocietyAmenities.PowerBackup = "Full"
	assert.Empty(t, Validate(StepSocietyAmenities, d))
}

func TestValidateFeatureRelations(t *testing.T) {
	d := completeDraft()
	d.Features.FloorNumber = ptr(12)
	d.Features.CarpetArea = 1300
	d.Features.SuperArea = 1100
	assert.Equal(t, []string{
		"Floor Number (cannot exceed total floors)",
		"Carpet Area (cannot exceed built-up area)",
		"Super Area (cannot be less than built-up area)",
	}, Validate(StepFeatures, d))

	d = completeDraft()
	d.Features.FloorNumber = ptr(0)
	d.Features.SuperArea = 0
	d.Features.CarpetArea = 0
	assert.Empty(t, Validate(StepFeatures, d), "ground floor and optional areas")
}

func TestValidateRoomCountBounds(t *testing.T) {
	d := completeDraft()
	d.Features.Bedrooms = MaxRoomCount + 1
	d.Features.Bathrooms = -1
	d.Features.Balconies = 1 << 40
	assert.Equal(t, []string{
		"Bedrooms (at most 20)",
		"Bathrooms",
		"Balconies (at most 20)",
	}, Validate(StepFeatures, d))

	d.Features.Bedrooms = MaxRoomCount
	d.Features.Bathrooms = 2
	d.Features.Balconies = 0
	assert.Empty(t, Validate(StepFeatures, d))
}

func TestValidateExtraRooms(t *testing.T) {
	d := completeDraft()
	d.Features.ExtraRooms = []string{"Study Room", "Pooja Room"}
	assert.Empty(t, Validate(StepFeatures, d))

	d.Features.ExtraRooms = []string{"Study Room", "!!!"}
	assert.Equal(t, []string{"Extra Rooms"}, Validate(StepFeatures, d))
}

func TestValidateOverlooking(t *testing.T) {
	d := completeDraft()
	assert.Empty(t, Validate(StepRestrictions, d), "overlooking is optional")

	d.Restrictions.Overlooking = "Main Road"
	assert.Empty(t, Validate(StepRestrictions, d))

	d.Restrictions.Overlooking = "The Sea"
	assert.Equal(t, []string{"Overlooking"}, Validate(StepRestrictions, d))
}

func TestValidateAvailableFrom(t *testing.T) {
	d := completeDraft()
	d.Availability.AvailableFrom = "01/11/2026"
	assert.Equal(t, []string{"Available From (use YYYY-MM-DD)"}, Validate(StepAvailability, d))
}

func TestRules(t *testing.T) {
	rules := Rules(StepCommercials)
	assert.Len(t, rules, 4)
	assert.Equal(t, "Maintenance Amount", rules[2].Field)
	assert.Contains(t, rules[2].Desc, "Excluded")

	assert.Empty(t, Rules(StepFlatAmenities))
	assert.Nil(t, Rules(StepReview))
}
