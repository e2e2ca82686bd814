package wizard

import (
	"strings"

	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/tui/form"
)

// editor is the form of one data-entry step. load fills the fields from the
// draft; apply writes them back into the controller and returns a notice to
// show the user, if any.
type editor struct {
	step  listing.Step
	form  *form.Form
	load  func(listing.Draft)
	apply func(*listing.Controller) string

	// description is the field ctrl+e hands to $EDITOR, when the step has one.
	description *form.TextField
}

// newEditors builds the editor of every step that has one.
func newEditors() map[listing.Step]*editor {
	return map[listing.Step]*editor{
		listing.StepBasicDetails:     basicDetailsEditor(),
		listing.StepLocation:         locationEditor(),
		listing.StepFeatures:         featuresEditor(),
		listing.StepSocietyAmenities: societyAmenitiesEditor(),
		listing.StepFlatAmenities:    flatAmenitiesEditor(),
		listing.StepRestrictions:     restrictionsEditor(),
		listing.StepCommercials:      commercialsEditor(),
		listing.StepAvailability:     availabilityEditor(),
	}
}

func basicDetailsEditor() *editor {
	propertyType := form.NewSelect("Property Type", listing.PropertyTypes, form.Required())
	configuration := form.NewSelect("Configuration", listing.Configurations, form.Required())
	furnishing := form.NewSelect("Furnishing Status", listing.FurnishingStatuses, form.Required())
	facing := form.NewSelect("Facing", listing.Facings, form.Required())

	return &editor{
		step: listing.StepBasicDetails,
		form: form.New(propertyType, configuration, furnishing, facing),
		load: func(d listing.Draft) {
			propertyType.SetValue(d.BasicInfo.PropertyType)
			configuration.SetValue(d.BasicInfo.Configuration)
			furnishing.SetValue(d.BasicInfo.FurnishingStatus)
			facing.SetValue(d.BasicInfo.Facing)
		},
		apply: func(c *listing.Controller) string {
			c.SetBasicInfo(listing.BasicInfo{
				PropertyType:     propertyType.Value(),
				Configuration:    configuration.Value(),
				FurnishingStatus: furnishing.Value(),
				Facing:           facing.Value(),
			})
			return ""
		},
	}
}

func locationEditor() *editor {
	flatNo := form.NewText("Flat No", "A-402", form.Required())
	line1 := form.NewText("Address Line 1", "Building, street", form.Required())
	line2 := form.NewText("Address Line 2", "")
	line3 := form.NewText("Address Line 3", "")
	lat := form.NewDecimal("Latitude", "optional", form.Reports("Coordinates"))
	lng := form.NewDecimal("Longitude", "optional", form.Reports("Coordinates"))
	locality := form.NewText("Locality", "", form.Required())
	area := form.NewText("Area", "", form.Required())
	pin := form.NewInteger("Pin Code", "6 digits", form.Required())

	return &editor{
		step: listing.StepLocation,
		form: form.New(flatNo, line1, line2, line3, lat, lng, locality, area, pin),
		load: func(d listing.Draft) {
			l := d.Location
			flatNo.SetValue(l.FlatNo)
			line1.SetValue(l.AddressLine1)
			line2.SetValue(l.AddressLine2)
			line3.SetValue(l.AddressLine3)
			lat.SetFloatPtr(l.Latitude)
			lng.SetFloatPtr(l.Longitude)
			locality.SetValue(l.Locality)
			area.SetValue(l.Area)
			pin.SetValue(l.PinCode)
		},
		apply: func(c *listing.Controller) string {
			c.SetLocation(listing.Location{
				FlatNo:       flatNo.Value(),
				AddressLine1: line1.Value(),
				AddressLine2: line2.Value(),
				AddressLine3: line3.Value(),
				Latitude:     lat.FloatPtr(),
				Longitude:    lng.FloatPtr(),
				Locality:     locality.Value(),
				Area:         area.Value(),
				PinCode:      pin.Value(),
			})
			return ""
		},
	}
}

func featuresEditor() *editor {
	bedrooms := form.NewInteger("Bedrooms", "", form.Required())
	bathrooms := form.NewInteger("Bathrooms", "", form.Required())
	balconies := form.NewInteger("Balconies", "0")
	extraRooms := form.NewCheckboxGroup("Extra Rooms", listing.ExtraRooms)
	floor := form.NewInteger("Floor Number", "0 for ground", form.Required())
	totalFloors := form.NewInteger("Total Floors", "", form.Required())
	superArea := form.NewDecimal("Super Area", "sq ft")
	builtUp := form.NewDecimal("Built-up Area", "sq ft", form.Required())
	carpet := form.NewDecimal("Carpet Area", "sq ft")
	age := form.NewSelect("Property Age", listing.PropertyAges, form.Required())
	description := form.NewText("Description", "ctrl+e opens $EDITOR")

	return &editor{
		step: listing.StepFeatures,
		form: form.New(bedrooms, bathrooms, balconies, extraRooms, floor, totalFloors,
			superArea, builtUp, carpet, age, description),
		load: func(d listing.Draft) {
			f := d.Features
			bedrooms.SetInt(f.Bedrooms)
			bathrooms.SetInt(f.Bathrooms)
			balconies.SetInt(f.Balconies)
			extraRooms.SetValues(f.ExtraRooms)
			floor.SetIntPtr(f.FloorNumber)
			totalFloors.SetInt(f.TotalFloors)
			superArea.SetFloat(f.SuperArea)
			builtUp.SetFloat(f.BuiltUpArea)
			carpet.SetFloat(f.CarpetArea)
			age.SetValue(f.PropertyAge)
			description.SetValue(f.Description)
		},
		apply: func(c *listing.Controller) string {
			dropped := c.SetFeatures(listing.Features{
				Bedrooms:    bedrooms.Int(),
				Bathrooms:   bathrooms.Int(),
				Balconies:   balconies.Int(),
				ExtraRooms:  extraRooms.Values(),
				FloorNumber: floor.IntPtr(),
				TotalFloors: totalFloors.Int(),
				SuperArea:   superArea.Float(),
				BuiltUpArea: builtUp.Float(),
				CarpetArea:  carpet.Float(),
				PropertyAge: age.Value(),
				Description: description.Value(),
			})
			if len(dropped) == 0 {
				return ""
			}
			labels := make([]string, len(dropped))
			for i, k := range dropped {
				labels[i] = k.Label()
			}
			return "Removed photos: " + strings.Join(labels, ", ")
		},
		description: description,
	}
}

func societyAmenitiesEditor() *editor {
	amenities := form.NewCheckboxGroup("Amenities", listing.SocietyAmenityList)
	backup := form.NewSelect("Power Backup Type", listing.PowerBackupTypes)

	return &editor{
		step: listing.StepSocietyAmenities,
		form: form.New(amenities, backup),
		load: func(d listing.Draft) {
			amenities.SetValues(d.SocietyAmenities.Amenities)
			backup.SetValue(d.SocietyAmenities.PowerBackup)
		},
		apply: func(c *listing.Controller) string {
			c.SetSocietyAmenities(listing.SocietyAmenities{
				Amenities:   amenities.Values(),
				PowerBackup: backup.Value(),
			})
			return ""
		},
	}
}

func flatAmenitiesEditor() *editor {
	amenities := form.NewCheckboxGroup("Amenities", listing.FlatAmenityList)

	return &editor{
		step: listing.StepFlatAmenities,
		form: form.New(amenities),
		load: func(d listing.Draft) {
			amenities.SetValues(d.FlatAmenities.Amenities)
		},
		apply: func(c *listing.Controller) string {
			c.SetFlatAmenities(listing.FlatAmenities{Amenities: amenities.Values()})
			return ""
		},
	}
}

func restrictionsEditor() *editor {
	bachelors := form.NewSelect("Bachelor Tenants", listing.YesNoOptions, form.Required())
	nonVeg := form.NewSelect("Non-Veg Tenants", listing.YesNoOptions, form.Required())
	pets := form.NewSelect("Pets Allowed", listing.YesNoOptions, form.Required())
	overlooking := form.NewSelect("Overlooking", listing.Overlookings)
	car := form.NewSelect("Car Parking", listing.YesNoOptions, form.Required())
	carCount := form.NewInteger("Car Parking Count", "when Yes")
	bike := form.NewSelect("Two Wheeler Parking", listing.YesNoOptions, form.Required())
	bikeCount := form.NewInteger("Two Wheeler Parking Count", "when Yes")
	flooring := form.NewSelect("Flooring Type", listing.FlooringTypes, form.Required())

	return &editor{
		step: listing.StepRestrictions,
		form: form.New(bachelors, nonVeg, pets, overlooking, car, carCount, bike, bikeCount, flooring),
		load: func(d listing.Draft) {
			r := d.Restrictions
			bachelors.SetValue(string(r.BachelorTenants))
			nonVeg.SetValue(string(r.NonVegTenants))
			pets.SetValue(string(r.PetsAllowed))
			overlooking.SetValue(r.Overlooking)
			car.SetValue(string(r.CarParking))
			carCount.SetInt(r.CarParkingCount)
			bike.SetValue(string(r.TwoWheelerParking))
			bikeCount.SetInt(r.TwoWheelerParkingCount)
			flooring.SetValue(r.FlooringType)
		},
		apply: func(c *listing.Controller) string {
			c.SetRestrictions(listing.Restrictions{
				BachelorTenants:        listing.YesNo(bachelors.Value()),
				NonVegTenants:          listing.YesNo(nonVeg.Value()),
				PetsAllowed:            listing.YesNo(pets.Value()),
				Overlooking:            overlooking.Value(),
				CarParking:             listing.YesNo(car.Value()),
				CarParkingCount:        carCount.Int(),
				TwoWheelerParking:      listing.YesNo(bike.Value()),
				TwoWheelerParkingCount: bikeCount.Int(),
				FlooringType:           flooring.Value(),
			})
			return ""
		},
	}
}

func commercialsEditor() *editor {
	rent := form.NewInteger("Monthly Rent", "₹", form.Required())
	maintenance := form.NewSelect("Maintenance", listing.MaintenanceModes, form.Required())
	amount := form.NewInteger("Maintenance Amount", "₹ when Excluded")
	deposit := form.NewInteger("Security Deposit", "₹", form.Required())

	return &editor{
		step: listing.StepCommercials,
		form: form.New(rent, maintenance, amount, deposit),
		load: func(d listing.Draft) {
			c := d.Commercials
			rent.SetInt(c.MonthlyRent)
			maintenance.SetValue(c.Maintenance)
			amount.SetInt(c.MaintenanceAmount)
			deposit.SetInt(c.SecurityDeposit)
		},
		apply: func(c *listing.Controller) string {
			c.SetCommercials(listing.Commercials{
				MonthlyRent:       rent.Int(),
				Maintenance:       maintenance.Value(),
				MaintenanceAmount: amount.Int(),
				SecurityDeposit:   deposit.Int(),
			})
			return ""
		},
	}
}

func availabilityEditor() *editor {
	from := form.NewText("Available From", "YYYY-MM-DD", form.Required())

	return &editor{
		step: listing.StepAvailability,
		form: form.New(from),
		load: func(d listing.Draft) {
			from.SetValue(d.Availability.AvailableFrom)
		},
		apply: func(c *listing.Controller) string {
			c.SetAvailability(listing.Availability{AvailableFrom: from.Value()})
			return ""
		},
	}
}
