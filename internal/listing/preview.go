package listing

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholders rendered for unset values.
const (
	NotSelected   = "Not selected"
	NoDescription = "No description available"
)

// Field is one labelled value of the preview.
type Field struct {
	Label string
	Value string
	Set   bool
}

// MediaItem is one uploaded photo.
type MediaItem struct {
	Slot  SlotKey
	Label string
	Ref   MediaRef
}

// Section groups the preview fields of one step.
type Section struct {
	Step   Step
	Title  string
	Fields []Field
	Media  []MediaItem
}

type sectionBuilder struct {
	Section
}

func (b *sectionBuilder) text(label, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		b.Fields = append(b.Fields, Field{Label: label, Value: NotSelected})
		return
	}
	b.Fields = append(b.Fields, Field{Label: label, Value: v, Set: true})
}

func (b *sectionBuilder) count(label string, n int) {
	if n <= 0 {
		b.text(label, "")
		return
	}
	b.text(label, strconv.Itoa(n))
}

func (b *sectionBuilder) rupees(label string, n int) {
	if n <= 0 {
		b.text(label, "")
		return
	}
	b.text(label, "₹"+message.NewPrinter(language.English).Sprintf("%d", n))
}

func (b *sectionBuilder) area(label string, v float64) {
	if v <= 0 {
		b.text(label, "")
		return
	}
	b.text(label, strconv.FormatFloat(v, 'f', -1, 64)+" sq.ft")
}

func (b *sectionBuilder) set(label string, values []string) {
	b.text(label, strings.Join(values, ", "))
}

func (b *sectionBuilder) yesNo(label string, v YesNo, n int) {
	if v == Yes && n > 0 {
		b.text(label, fmt.Sprintf("Yes (%d)", n))
		return
	}
	b.text(label, string(v))
}

// Preview projects the whole draft into labelled sections in step order.
// Every field is present; unset values carry a placeholder.
func Preview(d Draft) []Section {
	var out []Section
	add := func(step Step, fill func(*sectionBuilder)) {
		b := &sectionBuilder{Section{Step: step, Title: step.Title()}}
		fill(b)
		out = append(out, b.Section)
	}

	add(StepBasicDetails, func(b *sectionBuilder) {
		v := d.BasicInfo
		b.text("Property Type", v.PropertyType)
		b.text("Configuration", v.Configuration)
		b.text("Furnishing Status", v.FurnishingStatus)
		b.text("Facing", v.Facing)
	})
	add(StepLocation, func(b *sectionBuilder) {
		v := d.Location
		b.text("Flat No", v.FlatNo)
		b.text("Address", joinNonEmpty(", ", v.AddressLine1, v.AddressLine2, v.AddressLine3))
		b.text("Locality", v.Locality)
		b.text("Area", v.Area)
		b.text("Pin Code", v.PinCode)
		coords := ""
		if v.Latitude != nil && v.Longitude != nil {
			coords = fmt.Sprintf("%.6f, %.6f", *v.Latitude, *v.Longitude)
		}
		b.text("Coordinates", coords)
	})
	add(StepFeatures, func(b *sectionBuilder) {
		v := d.Features
		b.count("Bedrooms", v.Bedrooms)
		b.count("Bathrooms", v.Bathrooms)
		b.text("Balconies", strconv.Itoa(v.Balconies))
		b.set("Extra Rooms", v.ExtraRooms)
		floor := ""
		if v.FloorNumber != nil {
			floor = strconv.Itoa(*v.FloorNumber)
			if v.TotalFloors > 0 {
				floor += fmt.Sprintf(" of %d", v.TotalFloors)
			}
		}
		b.text("Floor", floor)
		b.area("Super Area", v.SuperArea)
		b.area("Built-up Area", v.BuiltUpArea)
		b.area("Carpet Area", v.CarpetArea)
		b.text("Property Age", v.PropertyAge)
		desc := strings.TrimSpace(v.Description)
		if desc == "" {
			b.Fields = append(b.Fields, Field{Label: "Description", Value: NoDescription})
		} else {
			b.text("Description", desc)
		}
	})
	add(StepSocietyAmenities, func(b *sectionBuilder) {
		b.set("Amenities", d.SocietyAmenities.Amenities)
		if slices.Contains(d.SocietyAmenities.Amenities, AmenityPowerBackup) {
			b.text("Power Backup", d.SocietyAmenities.PowerBackup)
		}
	})
	add(StepFlatAmenities, func(b *sectionBuilder) {
		b.set("Amenities", d.FlatAmenities.Amenities)
	})
	add(StepRestrictions, func(b *sectionBuilder) {
		v := d.Restrictions
		b.yesNo("Bachelor Tenants", v.BachelorTenants, 0)
		b.yesNo("Non-Veg Tenants", v.NonVegTenants, 0)
		b.yesNo("Pets Allowed", v.PetsAllowed, 0)
		b.text("Overlooking", v.Overlooking)
		b.yesNo("Car Parking", v.CarParking, v.CarParkingCount)
		b.yesNo("Two Wheeler Parking", v.TwoWheelerParking, v.TwoWheelerParkingCount)
		b.text("Flooring Type", v.FlooringType)
	})
	add(StepCommercials, func(b *sectionBuilder) {
		v := d.Commercials
		b.rupees("Monthly Rent", v.MonthlyRent)
		b.text("Maintenance", v.Maintenance)
		if v.Maintenance == MaintenanceExcluded {
			b.rupees("Maintenance Amount", v.MaintenanceAmount)
		}
		b.rupees("Security Deposit", v.SecurityDeposit)
	})
	add(StepAvailability, func(b *sectionBuilder) {
		b.text("Available From", d.Availability.AvailableFrom)
	})
	add(StepMedia, func(b *sectionBuilder) {
		for _, k := range d.Media.Slots() {
			if ref := d.Media.Ref(k); ref != "" {
				b.Media = append(b.Media, MediaItem{Slot: k, Label: k.Label(), Ref: ref})
			}
		}
	})
	return out
}

// Markdown renders the preview as a markdown document.
func Markdown(d Draft) string {
	var sb strings.Builder
	sb.WriteString("# Listing Preview\n")
	for _, s := range Preview(d) {
		fmt.Fprintf(&sb, "\n## %s\n\n", s.Title)
		if s.Step == StepMedia {
			if len(s.Media) == 0 {
				sb.WriteString("_" + NotSelected + "_\n")
			}
			for _, m := range s.Media {
				fmt.Fprintf(&sb, "- ![%s](%s)\n", m.Label, m.Ref)
			}
			continue
		}
		sb.WriteString("| Field | Value |\n|---|---|\n")
		for _, f := range s.Fields {
			v := escapeCell(f.Value)
			if !f.Set {
				v = "_" + v + "_"
			}
			fmt.Fprintf(&sb, "| %s | %s |\n", f.Label, v)
		}
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
