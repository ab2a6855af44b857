package valueobjects

// CustomizationType distinguishes a single-date customization from a standing
// one that applies to every matching occurrence from its recorded date on.
type CustomizationType string

const (
	CustomizationOneTime   CustomizationType = "one_time"
	CustomizationPermanent CustomizationType = "permanent"
)

func (c CustomizationType) String() string {
	return string(c)
}

func (c CustomizationType) Valid() bool {
	return c == CustomizationOneTime || c == CustomizationPermanent
}
