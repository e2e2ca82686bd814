package listing

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// DateLayout is the wire and input format of AvailableFrom.
const DateLayout = "2006-01-02"

var pinCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// world bounds valid WGS84 coordinates.
var world = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Rule is a declarative check on one field of a slice of type T.
type Rule[T any] struct {
	Field string       // label reported when the rule fails
	Desc  string       // human description of the rule
	When  func(T) bool // guard: the rule applies only when it returns true
	Check func(T) bool // true when the field is valid
}

// RuleInfo describes one rule for display.
type RuleInfo struct {
	Field string `json:"field"`
	Desc  string `json:"description"`
}

type policy interface {
	validate(d Draft) []string
	describe() []RuleInfo
}

type stepRules[T any] struct {
	slice func(Draft) T
	rules []Rule[T]
}

func (s stepRules[T]) validate(d Draft) []string {
	v := s.slice(d)
	var out []string
	for _, r := range s.rules {
		if r.When != nil && !r.When(v) {
			continue
		}
		if !r.Check(v) && !slices.Contains(out, r.Field) {
			out = append(out, r.Field)
		}
	}
	return out
}

func (s stepRules[T]) describe() []RuleInfo {
	out := make([]RuleInfo, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, RuleInfo{Field: r.Field, Desc: r.Desc})
	}
	return out
}

func required[T any](field string, get func(T) string) Rule[T] {
	return Rule[T]{
		Field: field,
		Desc:  "required",
		Check: func(v T) bool { return strings.TrimSpace(get(v)) != "" },
	}
}

func choice[T any](field string, options []string, get func(T) string) Rule[T] {
	return Rule[T]{
		Field: field,
		Desc:  "one of: " + strings.Join(options, ", "),
		Check: func(v T) bool { return slices.Contains(options, get(v)) },
	}
}

func answered[T any](field string, get func(T) YesNo) Rule[T] {
	return Rule[T]{
		Field: field,
		Desc:  "Yes or No",
		Check: func(v T) bool { return get(v).Answered() },
	}
}

func positive[T any](field string, get func(T) int) Rule[T] {
	return Rule[T]{
		Field: field,
		Desc:  "required, greater than zero",
		Check: func(v T) bool { return get(v) > 0 },
	}
}

func atMost[T any](field string, limit int, get func(T) int) Rule[T] {
	return Rule[T]{
		Field: fmt.Sprintf("%s (at most %d)", field, limit),
		Desc:  fmt.Sprintf("at most %d", limit),
		Check: func(v T) bool { return get(v) <= limit },
	}
}

var policies = map[Step]policy{
	StepBasicDetails: stepRules[BasicInfo]{
		slice: func(d Draft) BasicInfo { return d.BasicInfo },
		rules: []Rule[BasicInfo]{
			choice("Property Type", PropertyTypes, func(b BasicInfo) string { return b.PropertyType }),
			choice("Configuration", Configurations, func(b BasicInfo) string { return b.Configuration }),
			choice("Furnishing Status", FurnishingStatuses, func(b BasicInfo) string { return b.FurnishingStatus }),
			choice("Facing", Facings, func(b BasicInfo) string { return b.Facing }),
		},
	},
	StepLocation: stepRules[Location]{
		slice: func(d Draft) Location { return d.Location },
		rules: []Rule[Location]{
			required("Flat No", func(l Location) string { return l.FlatNo }),
			required("Address Line 1", func(l Location) string { return l.AddressLine1 }),
			required("Locality", func(l Location) string { return l.Locality }),
			required("Area", func(l Location) string { return l.Area }),
			required("Pin Code", func(l Location) string { return l.PinCode }),
			{
				Field: "Pin Code (must be 6 digits)",
				Desc:  "exactly 6 digits",
				When:  func(l Location) bool { return strings.TrimSpace(l.PinCode) != "" },
				Check: func(l Location) bool { return pinCodePattern.MatchString(strings.TrimSpace(l.PinCode)) },
			},
			{
				Field: "Coordinates",
				Desc:  "latitude and longitude given together, within range",
				When:  func(l Location) bool { return l.Latitude != nil || l.Longitude != nil },
				Check: func(l Location) bool {
					if l.Latitude == nil || l.Longitude == nil {
						return false
					}
					return world.Contains(orb.Point{*l.Longitude, *l.Latitude})
				},
			},
		},
	},
	StepFeatures: stepRules[Features]{
		slice: func(d Draft) Features { return d.Features },
		rules: []Rule[Features]{
			positive("Bedrooms", func(f Features) int { return f.Bedrooms }),
			atMost("Bedrooms", MaxRoomCount, func(f Features) int { return f.Bedrooms }),
			positive("Bathrooms", func(f Features) int { return f.Bathrooms }),
			atMost("Bathrooms", MaxRoomCount, func(f Features) int { return f.Bathrooms }),
			{
				Field: "Balconies",
				Desc:  "zero or more",
				Check: func(f Features) bool { return f.Balconies >= 0 },
			},
			atMost("Balconies", MaxRoomCount, func(f Features) int { return f.Balconies }),
			{
				Field: "Extra Rooms",
				Desc:  "any of: " + strings.Join(ExtraRooms, ", "),
				Check: func(f Features) bool {
					for _, room := range f.ExtraRooms {
						if !slices.Contains(ExtraRooms, room) {
							return false
						}
					}
					return true
				},
			},
			{
				Field: "Floor Number",
				Desc:  "required",
				Check: func(f Features) bool { return f.FloorNumber != nil },
			},
			positive("Total Floors", func(f Features) int { return f.TotalFloors }),
			{
				Field: "Floor Number (cannot exceed total floors)",
				Desc:  "floor number at most total floors",
				When:  func(f Features) bool { return f.FloorNumber != nil && f.TotalFloors > 0 },
				Check: func(f Features) bool { return *f.FloorNumber <= f.TotalFloors },
			},
			{
				Field: "Built-up Area",
				Desc:  "required, greater than zero",
				Check: func(f Features) bool { return f.BuiltUpArea > 0 },
			},
			{
				Field: "Carpet Area (cannot exceed built-up area)",
				Desc:  "carpet area at most built-up area",
				When:  func(f Features) bool { return f.CarpetArea > 0 && f.BuiltUpArea > 0 },
				Check: func(f Features) bool { return f.CarpetArea <= f.BuiltUpArea },
			},
			{
				Field: "Super Area (cannot be less than built-up area)",
				Desc:  "super area at least built-up area",
				When:  func(f Features) bool { return f.SuperArea > 0 && f.BuiltUpArea > 0 },
				Check: func(f Features) bool { return f.SuperArea >= f.BuiltUpArea },
			},
			choice("Property Age", PropertyAges, func(f Features) string { return f.PropertyAge }),
		},
	},
	StepSocietyAmenities: stepRules[SocietyAmenities]{
		slice: func(d Draft) SocietyAmenities { return d.SocietyAmenities },
		rules: []Rule[SocietyAmenities]{
			{
				Field: "Power Backup Type",
				Desc:  "required when Power Backup is selected",
				When:  func(s SocietyAmenities) bool { return slices.Contains(s.Amenities, AmenityPowerBackup) },
				Check: func(s SocietyAmenities) bool { return slices.Contains(PowerBackupTypes, s.PowerBackup) },
			},
		},
	},
	StepFlatAmenities: stepRules[FlatAmenities]{
		slice: func(d Draft) FlatAmenities { return d.FlatAmenities },
	},
	StepRestrictions: stepRules[Restrictions]{
		slice: func(d Draft) Restrictions { return d.Restrictions },
		rules: []Rule[Restrictions]{
			answered("Bachelor Tenants", func(r Restrictions) YesNo { return r.BachelorTenants }),
			answered("Non-Veg Tenants", func(r Restrictions) YesNo { return r.NonVegTenants }),
			answered("Pets Allowed", func(r Restrictions) YesNo { return r.PetsAllowed }),
			answered("Car Parking", func(r Restrictions) YesNo { return r.CarParking }),
			{
				Field: "Car Parking Count",
				Desc:  "required when car parking is Yes",
				When:  func(r Restrictions) bool { return r.CarParking == Yes },
				Check: func(r Restrictions) bool { return r.CarParkingCount > 0 },
			},
			answered("Two Wheeler Parking", func(r Restrictions) YesNo { return r.TwoWheelerParking }),
			{
				Field: "Two Wheeler Parking Count",
				Desc:  "required when two wheeler parking is Yes",
				When:  func(r Restrictions) bool { return r.TwoWheelerParking == Yes },
				Check: func(r Restrictions) bool { return r.TwoWheelerParkingCount > 0 },
			},
			{
				Field: "Overlooking",
				Desc:  "optional; one of: " + strings.Join(Overlookings, ", "),
				When:  func(r Restrictions) bool { return r.Overlooking != "" },
				Check: func(r Restrictions) bool { return slices.Contains(Overlookings, r.Overlooking) },
			},
			choice("Flooring Type", FlooringTypes, func(r Restrictions) string { return r.FlooringType }),
		},
	},
	StepCommercials: stepRules[Commercials]{
		slice: func(d Draft) Commercials { return d.Commercials },
		rules: []Rule[Commercials]{
			positive("Monthly Rent", func(c Commercials) int { return c.MonthlyRent }),
			choice("Maintenance", MaintenanceModes, func(c Commercials) string { return c.Maintenance }),
			{
				Field: "Maintenance Amount",
				Desc:  "required when maintenance is Excluded",
				When:  func(c Commercials) bool { return c.Maintenance == MaintenanceExcluded },
				Check: func(c Commercials) bool { return c.MaintenanceAmount > 0 },
			},
			positive("Security Deposit", func(c Commercials) int { return c.SecurityDeposit }),
		},
	},
	StepAvailability: stepRules[Availability]{
		slice: func(d Draft) Availability { return d.Availability },
		rules: []Rule[Availability]{
			required("Available From", func(a Availability) string { return a.AvailableFrom }),
			{
				Field: "Available From (use YYYY-MM-DD)",
				Desc:  "date in YYYY-MM-DD format",
				When:  func(a Availability) bool { return strings.TrimSpace(a.AvailableFrom) != "" },
				Check: func(a Availability) bool {
					_, err := time.Parse(DateLayout, strings.TrimSpace(a.AvailableFrom))
					return err == nil
				},
			},
		},
	},
}

// Validate checks the slice owned by step and returns every missing or
// invalid field label, in rule order. An empty result means the step is valid.
func Validate(step Step, d Draft) []string {
	p, ok := policies[step]
	if !ok {
		return nil
	}
	return p.validate(d)
}

// Rules describes the validation rules of a step.
func Rules(step Step) []RuleInfo {
	p, ok := policies[step]
	if !ok {
		return nil
	}
	return p.describe()
}
