package resource

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Axis identifies one configuration dimension encoded in a folder name.
// The numeric order of the constants is the canonical qualifier order.
type Axis int

const (
	AxisMCC Axis = iota
	AxisMNC
	AxisLocale
	AxisLayoutDirection
	AxisSmallestWidth
	AxisAvailableWidth
	AxisAvailableHeight
	AxisScreenSize
	AxisScreenAspect
	AxisScreenRound
	AxisOrientation
	AxisUIMode
	AxisNightMode
	AxisDensity
	AxisTouchscreen
	AxisKeyboardState
	AxisTextInput
	AxisNavigationState
	AxisNavigation
	AxisScreenDimension
	AxisVersion
)

var axisNames = [...]string{
	AxisMCC:             "mcc",
	AxisMNC:             "mnc",
	AxisLocale:          "locale",
	AxisLayoutDirection: "layout-direction",
	AxisSmallestWidth:   "smallest-width",
	AxisAvailableWidth:  "available-width",
	AxisAvailableHeight: "available-height",
	AxisScreenSize:      "screen-size",
	AxisScreenAspect:    "screen-aspect",
	AxisScreenRound:     "screen-round",
	AxisOrientation:     "orientation",
	AxisUIMode:          "ui-mode",
	AxisNightMode:       "night-mode",
	AxisDensity:         "density",
	AxisTouchscreen:     "touchscreen",
	AxisKeyboardState:   "keyboard-state",
	AxisTextInput:       "text-input",
	AxisNavigationState: "navigation-state",
	AxisNavigation:      "navigation",
	AxisScreenDimension: "screen-dimension",
	AxisVersion:         "version",
}

// String returns the axis name.
func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return "unknown"
	}
	return axisNames[a]
}

// Qualifier is one configuration value, e.g. {AxisDensity, "hdpi"}.
type Qualifier struct {
	Axis  Axis
	Value string
}

type qualifierMatcher struct {
	axis     Axis
	keywords []string
	pattern  *regexp.Regexp
}

func (m qualifierMatcher) match(segment string) bool {
	if slices.Contains(m.keywords, segment) {
		return true
	}
	return m.pattern != nil && m.pattern.MatchString(segment)
}

// Locale is handled separately because it may span two segments.
var qualifierMatchers = []qualifierMatcher{
	{axis: AxisMCC, pattern: regexp.MustCompile(`^mcc\d{1,3}$`)},
	{axis: AxisMNC, pattern: regexp.MustCompile(`^mnc\d{1,3}$`)},
	{axis: AxisLayoutDirection, keywords: []string{"ldrtl", "ldltr"}},
	{axis: AxisSmallestWidth, pattern: regexp.MustCompile(`^sw\d+dp$`)},
	{axis: AxisAvailableWidth, pattern: regexp.MustCompile(`^w\d+dp$`)},
	{axis: AxisAvailableHeight, pattern: regexp.MustCompile(`^h\d+dp$`)},
	{axis: AxisScreenSize, keywords: []string{"small", "normal", "large", "xlarge"}},
	{axis: AxisScreenAspect, keywords: []string{"long", "notlong"}},
	{axis: AxisScreenRound, keywords: []string{"round", "notround"}},
	{axis: AxisOrientation, keywords: []string{"port", "land", "square"}},
	{axis: AxisUIMode, keywords: []string{"car", "desk", "television", "appliance", "watch", "vrheadset"}},
	{axis: AxisNightMode, keywords: []string{"night", "notnight"}},
	{
		axis:     AxisDensity,
		keywords: []string{"ldpi", "mdpi", "tvdpi", "hdpi", "xhdpi", "xxhdpi", "xxxhdpi", "nodpi", "anydpi"},
		pattern:  regexp.MustCompile(`^\d+dpi$`),
	},
	{axis: AxisTouchscreen, keywords: []string{"notouch", "stylus", "finger"}},
	{axis: AxisKeyboardState, keywords: []string{"keysexposed", "keyshidden", "keyssoft"}},
	{axis: AxisTextInput, keywords: []string{"nokeys", "qwerty", "12key"}},
	{axis: AxisNavigationState, keywords: []string{"navexposed", "navhidden"}},
	{axis: AxisNavigation, keywords: []string{"nonav", "dpad", "trackball", "wheel"}},
	{axis: AxisScreenDimension, pattern: regexp.MustCompile(`^\d+x\d+$`)},
	{axis: AxisVersion, pattern: regexp.MustCompile(`^v\d+$`)},
}

var (
	languageSegment   = regexp.MustCompile(`^[a-zA-Z]{2,3}$`)
	regionSegment     = regexp.MustCompile(`^r[a-zA-Z]{2}$`)
	regionOnlySegment = regexp.MustCompile(`^r[A-Z]{2}$`) // a region needs a language before it
)

// Configuration is a normalized, ordered tuple of qualifiers. The zero value
// is the default configuration.
type Configuration struct {
	qualifiers []Qualifier
}

// ParseQualifiers parses a dash-separated qualifier list such as "en-rUS-hdpi".
// The empty string yields the default configuration.
func ParseQualifiers(s string) (Configuration, error) {
	if s == "" {
		return Configuration{}, nil
	}
	return ParseConfiguration(strings.Split(s, "-"))
}

// ParseConfiguration parses folder-name segments into a configuration.
// Segments may come in any order; the result is sorted into canonical axis
// order. An unknown segment or a repeated axis is an error.
func ParseConfiguration(segments []string) (Configuration, error) {
	var qualifiers []Qualifier
	seen := make(map[Axis]string)

	add := func(q Qualifier) error {
		if prev, ok := seen[q.Axis]; ok {
			return fmt.Errorf("resource: qualifier %q repeats %s axis already set to %q", q.Value, q.Axis, prev)
		}
		seen[q.Axis] = q.Value
		qualifiers = append(qualifiers, q)
		return nil
	}

	for i := 0; i < len(segments); i++ {
		segment := segments[i]
		if segment == "" {
			return Configuration{}, fmt.Errorf("resource: empty qualifier")
		}
		lower := strings.ToLower(segment)

		if q, ok := matchQualifier(lower); ok {
			if err := add(q); err != nil {
				return Configuration{}, err
			}
			continue
		}

		locale, consumed, ok := parseLocale(segments[i:])
		if !ok {
			return Configuration{}, fmt.Errorf("resource: unknown qualifier %q", segment)
		}
		if err := add(Qualifier{Axis: AxisLocale, Value: locale}); err != nil {
			return Configuration{}, err
		}
		i += consumed - 1
	}

	slices.SortStableFunc(qualifiers, func(a, b Qualifier) int {
		return int(a.Axis) - int(b.Axis)
	})
	return Configuration{qualifiers: qualifiers}, nil
}

func matchQualifier(segment string) (Qualifier, bool) {
	for _, m := range qualifierMatchers {
		if m.match(segment) {
			return Qualifier{Axis: m.axis, Value: segment}, true
		}
	}
	return Qualifier{}, false
}

// parseLocale recognizes "en", "en"+"rUS" and "b+sr+Latn" forms and returns
// the normalized value and the number of segments consumed.
func parseLocale(segments []string) (string, int, bool) {
	first := segments[0]
	if strings.HasPrefix(strings.ToLower(first), "b+") {
		tag, err := language.Parse(strings.ReplaceAll(first[2:], "+", "-"))
		if err != nil {
			return "", 0, false
		}
		return "b+" + strings.ReplaceAll(tag.String(), "-", "+"), 1, true
	}

	if !languageSegment.MatchString(first) || regionOnlySegment.MatchString(first) {
		return "", 0, false
	}
	lang := strings.ToLower(first)
	if _, err := language.ParseBase(lang); err != nil {
		return "", 0, false
	}

	if len(segments) > 1 && regionSegment.MatchString(segments[1]) {
		region := strings.ToUpper(segments[1][1:])
		if _, err := language.ParseRegion(region); err == nil {
			return lang + "-r" + region, 2, true
		}
	}
	return lang, 1, true
}

// String returns the dash-joined qualifier values, "" for the default configuration.
func (c Configuration) String() string {
	values := make([]string, len(c.qualifiers))
	for i, q := range c.qualifiers {
		values[i] = q.Value
	}
	return strings.Join(values, "-")
}

// IsDefault reports whether the configuration has no qualifiers.
func (c Configuration) IsDefault() bool {
	return len(c.qualifiers) == 0
}

// Qualifiers returns a copy of the qualifiers in canonical order.
func (c Configuration) Qualifiers() []Qualifier {
	return slices.Clone(c.qualifiers)
}

// Get returns the value for axis, if present.
func (c Configuration) Get(axis Axis) (string, bool) {
	for _, q := range c.qualifiers {
		if q.Axis == axis {
			return q.Value, true
		}
	}
	return "", false
}
