package listing

import (
	"slices"
	"strings"
)

// YesNo is a tri-state answer. The zero value means "not answered".
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// Answered reports whether the user picked Yes or No.
func (y YesNo) Answered() bool {
	return y == Yes || y == No
}

// Maintenance modes for the commercials step.
const (
	MaintenanceIncluded = "Included"
	MaintenanceExcluded = "Excluded"
)

// AmenityPowerBackup is the society amenity that makes the power backup type
// mandatory.
const AmenityPowerBackup = "Power Backup"

// Option lists offered by the section editors.
var (
	PropertyTypes      = []string{"Apartment", "Independent House", "Villa", "Builder Floor", "Penthouse", "Studio Apartment"}
	Configurations     = []string{"1 RK", "1 BHK", "2 BHK", "3 BHK", "4 BHK", "4+ BHK"}
	FurnishingStatuses = []string{"Unfurnished", "Semi-Furnished", "Fully Furnished"}
	Facings            = []string{"North", "South", "East", "West", "North-East", "North-West", "South-East", "South-West"}
	ExtraRooms         = []string{"Pooja Room", "Study Room", "Servant Room", "Store Room"}
	PropertyAges       = []string{"Less than 1 year", "1-5 years", "5-10 years", "More than 10 years"}
	SocietyAmenityList = []string{"Lift", AmenityPowerBackup, "Security", "Gym", "Swimming Pool", "Club House", "Park", "Visitor Parking", "Intercom", "Rain Water Harvesting"}
	PowerBackupTypes   = []string{"Full", "Partial"}
	FlatAmenityList    = []string{"Air Conditioner", "Wardrobe", "Geyser", "Modular Kitchen", "Refrigerator", "Washing Machine", "Microwave", "Water Purifier", "Sofa", "Dining Table"}
	Overlookings       = []string{"Garden/Park", "Main Road", "Pool", "Club", "Not Applicable"}
	FlooringTypes      = []string{"Vitrified Tiles", "Marble", "Wooden", "Granite", "Mosaic", "Ceramic Tiles"}
	MaintenanceModes   = []string{MaintenanceIncluded, MaintenanceExcluded}
	YesNoOptions       = []string{string(Yes), string(No)}
)

// BasicInfo is the basic-details slice.
type BasicInfo struct {
	PropertyType     string `json:"propertyType" yaml:"property_type"`
	Configuration    string `json:"propertyConfiguration" yaml:"configuration"`
	FurnishingStatus string `json:"furnishingStatus" yaml:"furnishing_status"`
	Facing           string `json:"facing" yaml:"facing"`
}

// Location is the location slice. Coordinates are optional.
type Location struct {
	FlatNo       string   `json:"flatNo" yaml:"flat_no"`
	AddressLine1 string   `json:"addressLine1" yaml:"address_line1"`
	AddressLine2 string   `json:"addressLine2" yaml:"address_line2"`
	AddressLine3 string   `json:"addressLine3" yaml:"address_line3"`
	Latitude     *float64 `json:"latitude" yaml:"latitude"`
	Longitude    *float64 `json:"longitude" yaml:"longitude"`
	Locality     string   `json:"locality" yaml:"locality"`
	Area         string   `json:"area" yaml:"area"`
	PinCode      string   `json:"pinCode" yaml:"pin_code"`
}

// Features is the features slice. Room counts drive the dynamic media slots.
type Features struct {
	Bedrooms    int      `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms   int      `json:"bathrooms" yaml:"bathrooms"`
	Balconies   int      `json:"balconies" yaml:"balconies"`
	ExtraRooms  []string `json:"extraRooms" yaml:"extra_rooms"`
	FloorNumber *int     `json:"floorNumber" yaml:"floor_number"`
	TotalFloors int      `json:"totalFloors" yaml:"total_floors"`
	SuperArea   float64  `json:"superArea" yaml:"super_area"`
	BuiltUpArea float64  `json:"builtUpArea" yaml:"built_up_area"`
	CarpetArea  float64  `json:"carpetArea" yaml:"carpet_area"`
	PropertyAge string   `json:"propertyAge" yaml:"property_age"`
	Description string   `json:"description" yaml:"description"`
}

// SocietyAmenities is the society-amenities slice.
type SocietyAmenities struct {
	Amenities   []string `json:"amenities" yaml:"amenities"`
	PowerBackup string   `json:"powerBackup,omitempty" yaml:"power_backup"`
}

// FlatAmenities is the flat-amenities slice.
type FlatAmenities struct {
	Amenities []string `json:"amenities" yaml:"amenities"`
}

// Restrictions is the restrictions slice.
type Restrictions struct {
	BachelorTenants        YesNo  `json:"bachelorTenants" yaml:"bachelor_tenants"`
	NonVegTenants          YesNo  `json:"nonVegTenants" yaml:"non_veg_tenants"`
	PetsAllowed            YesNo  `json:"petsAllowed" yaml:"pets_allowed"`
	Overlooking            string `json:"overlooking" yaml:"overlooking"`
	CarParking             YesNo  `json:"carParking" yaml:"car_parking"`
	CarParkingCount        int    `json:"carParkingCount" yaml:"car_parking_count"`
	TwoWheelerParking      YesNo  `json:"twoWheelerParking" yaml:"two_wheeler_parking"`
	TwoWheelerParkingCount int    `json:"twoWheelerParkingCount" yaml:"two_wheeler_parking_count"`
	FlooringType           string `json:"flooringType" yaml:"flooring_type"`
}

// Commercials is the commercials slice. Amounts are whole rupees.
type Commercials struct {
	MonthlyRent       int    `json:"monthlyRent" yaml:"monthly_rent"`
	Maintenance       string `json:"maintenance" yaml:"maintenance"`
	MaintenanceAmount int    `json:"maintenanceAmount" yaml:"maintenance_amount"`
	SecurityDeposit   int    `json:"securityDeposit" yaml:"security_deposit"`
}

// Availability is the availability slice. AvailableFrom is YYYY-MM-DD.
type Availability struct {
	AvailableFrom string `json:"availableFrom" yaml:"available_from"`
}

// Draft is the in-progress listing: one typed slice per wizard step.
type Draft struct {
	BasicInfo        BasicInfo
	Location         Location
	Features         Features
	SocietyAmenities SocietyAmenities
	FlatAmenities    FlatAmenities
	Restrictions     Restrictions
	Commercials      Commercials
	Availability     Availability
	Media            Media
}

// NewDraft returns an empty draft with the fixed media slots in place.
func NewDraft() Draft {
	var d Draft
	d.Media = newMedia(DeriveSlots(d.Features))
	return d
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	c := d
	c.Location.Latitude = clonePtr(d.Location.Latitude)
	c.Location.Longitude = clonePtr(d.Location.Longitude)
	c.Features.ExtraRooms = slices.Clone(d.Features.ExtraRooms)
	c.Features.FloorNumber = clonePtr(d.Features.FloorNumber)
	c.SocietyAmenities.Amenities = slices.Clone(d.SocietyAmenities.Amenities)
	c.FlatAmenities.Amenities = slices.Clone(d.FlatAmenities.Amenities)
	c.Media = d.Media.Clone()
	return c
}

// Slice returns the slice owned by step, or nil for the review step.
func (d Draft) Slice(step Step) any {
	switch step {
	case StepBasicDetails:
		return d.BasicInfo
	case StepLocation:
		return d.Location
	case StepFeatures:
		return d.Features
	case StepSocietyAmenities:
		return d.SocietyAmenities
	case StepFlatAmenities:
		return d.FlatAmenities
	case StepRestrictions:
		return d.Restrictions
	case StepCommercials:
		return d.Commercials
	case StepAvailability:
		return d.Availability
	case StepMedia:
		return d.Media.FieldMap()
	}
	return nil
}

// NormalizeSet trims, de-duplicates and sorts a set of names.
func NormalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
