package viewer

import (
	"fmt"
	"slices"
	"strings"

	strutil "dicomviewer/pkg/platform/strings"
)

// Mode selects which attributes a load requests.
type Mode int

const (
	// ModeAll requests every attribute the server can name.
	ModeAll Mode = iota
	// ModeCustom requests only the configured field list.
	ModeCustom
)

func (m Mode) String() string {
	if m == ModeCustom {
		return "custom"
	}
	return "all"
}

// ParseMode accepts "all" or "custom".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return ModeAll, nil
	case "custom":
		return ModeCustom, nil
	default:
		return ModeAll, fmt.Errorf("unknown mode %q (want all or custom)", s)
	}
}

// LoadConfig is the loading configuration: mode plus the custom field list.
type LoadConfig struct {
	Mode   Mode
	custom []string
}

// SetCustomFields replaces the custom list from comma separated input.
func (c *LoadConfig) SetCustomFields(input string) {
	c.custom = strutil.DedupeAndTrim(strings.Split(input, ","))
}

// ToggleField adds field to the custom list or removes it when present.
func (c *LoadConfig) ToggleField(field string) {
	field = strings.TrimSpace(field)
	if field == "" {
		return
	}
	if i := slices.Index(c.custom, field); i >= 0 {
		c.custom = slices.Delete(c.custom, i, i+1)
		return
	}
	c.custom = append(c.custom, field)
}

// CustomFields returns a copy of the custom list.
func (c *LoadConfig) CustomFields() []string {
	return slices.Clone(c.custom)
}

// Fields returns the field list to send with a load: nil in ModeAll, which
// the server treats as "all".
func (c *LoadConfig) Fields() []string {
	if c.Mode == ModeAll {
		return nil
	}
	return c.CustomFields()
}

// Summary describes the configuration in one line.
func (c *LoadConfig) Summary() string {
	if c.Mode == ModeAll {
		return "Loading Mode: All Fields"
	}
	return fmt.Sprintf("Loading Mode: Custom Fields (%d)", len(c.custom))
}
