// Package listing implements the property listing wizard: the draft and its
// per-step slices, validation rules, the step controller, the media pipeline
// and the read-only preview.
package listing

import (
	"fmt"
	"strings"
)

// Step identifies one wizard step.
type Step int

// Step enumeration in wizard order.
const (
	StepBasicDetails     Step = iota // Property type, configuration, furnishing, facing
	StepLocation                     // Address and coordinates
	StepFeatures                     // Room counts, floors, areas
	StepSocietyAmenities             // Society amenities and power backup
	StepFlatAmenities                // In-flat amenities
	StepRestrictions                 // Tenant preferences, parking, flooring
	StepCommercials                  // Rent, maintenance, deposit
	StepAvailability                 // Available-from date
	StepMedia                        // Photo uploads
	StepReview                       // Preview of the whole draft (terminal)
)

var stepIDs = [...]string{
	StepBasicDetails:     "basic-details",
	StepLocation:         "location",
	StepFeatures:         "features",
	StepSocietyAmenities: "society-amenities",
	StepFlatAmenities:    "flat-amenities",
	StepRestrictions:     "restrictions",
	StepCommercials:      "commercials",
	StepAvailability:     "availability",
	StepMedia:            "media",
	StepReview:           "review",
}

var stepTitles = [...]string{
	StepBasicDetails:     "Basic Details",
	StepLocation:         "Location",
	StepFeatures:         "Features",
	StepSocietyAmenities: "Society Amenities",
	StepFlatAmenities:    "Flat Amenities",
	StepRestrictions:     "Restrictions",
	StepCommercials:      "Commercials",
	StepAvailability:     "Availability",
	StepMedia:            "Photos",
	StepReview:           "Review",
}

// stepEndpoints maps each persisted step to its backend path segment under
// /properties. Media and review have no step endpoint.
var stepEndpoints = [...]string{
	StepBasicDetails:     "property",
	StepLocation:         "property-location",
	StepFeatures:         "property-features",
	StepSocietyAmenities: "society-amenities",
	StepFlatAmenities:    "flat-amenities",
	StepRestrictions:     "property-restrictions",
	StepCommercials:      "property-commercials",
	StepAvailability:     "property-availability",
	StepMedia:            "",
	StepReview:           "",
}

// Steps returns all steps in wizard order.
func Steps() []Step {
	steps := make([]Step, 0, len(stepIDs))
	for s := StepBasicDetails; s <= StepReview; s++ {
		steps = append(steps, s)
	}
	return steps
}

// ID returns the stable kebab-case identifier of the step.
func (s Step) ID() string {
	if !s.valid() {
		return fmt.Sprintf("step-%d", int(s))
	}
	return stepIDs[s]
}

// String implements fmt.Stringer.
func (s Step) String() string {
	return s.ID()
}

// Title returns the human-readable step title.
func (s Step) Title() string {
	if !s.valid() {
		return s.ID()
	}
	return stepTitles[s]
}

// Endpoint returns the backend path segment for the step, or "" if the step
// is not persisted on its own.
func (s Step) Endpoint() string {
	if !s.valid() {
		return ""
	}
	return stepEndpoints[s]
}

// Persisted reports whether advancing past the step performs a network call.
func (s Step) Persisted() bool {
	return s.Endpoint() != ""
}

func (s Step) valid() bool {
	return s >= StepBasicDetails && s <= StepReview
}

// ParseStep resolves a step identifier (e.g. "commercials") to a Step.
func ParseStep(id string) (Step, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for s, sid := range stepIDs {
		if sid == id {
			return Step(s), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", id)
}
