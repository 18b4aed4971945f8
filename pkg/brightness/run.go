package brightness

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Output is the result of one Run.
type Output struct {
	Device  Device
	Percent int
	// Set is true when Percent was written rather than read.
	Set bool
}

// Controller ties selection and level access together for one invocation.
type Controller struct {
	Selector Selector
	Accessor Accessor
	Roots    map[Class]string
}

// NewController returns a Controller working on fs. A nil writer writes
// levels directly into sysfs.
func NewController(fs afero.Fs, w LevelWriter, log zerolog.Logger) *Controller {
	return &Controller{
		Selector: Selector{Fs: fs, Log: log},
		Accessor: Accessor{Fs: fs, Writer: w, Log: log},
		Roots:    map[Class]string{},
	}
}

// Root returns the directory scanned for class.
func (c *Controller) Root(class Class) string {
	if r, ok := c.Roots[class]; ok && r != "" {
		return r
	}
	return class.DefaultRoot()
}

// Select picks the device for class under its configured root.
func (c *Controller) Select(class Class) (Device, error) {
	return c.Selector.Select(class, c.Root(class))
}

// Run reports the percentage of the class's device, or sets it when
// requested is non-nil. The request is validated before the filesystem is
// touched.
func (c *Controller) Run(class Class, requested *int) (Output, error) {
	if requested != nil {
		if err := ValidatePercent(*requested); err != nil {
			return Output{}, err
		}
	}

	dev, err := c.Select(class)
	if err != nil {
		return Output{}, err
	}

	if requested == nil {
		pct, err := c.Accessor.GetPercentage(dev)
		if err != nil {
			return Output{}, err
		}
		return Output{Device: dev, Percent: pct}, nil
	}

	if err := c.Accessor.SetPercentage(dev, *requested); err != nil {
		return Output{}, err
	}
	return Output{Device: dev, Percent: *requested, Set: true}, nil
}

// ValidatePercent rejects values outside [0,100].
func ValidatePercent(pct int) error {
	if pct < 0 || pct > 100 {
		return &Error{Kind: KindInvalidInput, Value: strconv.Itoa(pct)}
	}
	return nil
}

// ParsePercent parses a user supplied percentage such as "43" or "43%".
func ParsePercent(s string) (int, error) {
	text := strings.TrimSuffix(strings.TrimSpace(s), "%")
	pct, err := strconv.Atoi(text)
	if err != nil {
		return 0, &Error{Kind: KindInvalidInput, Value: s, Err: err}
	}
	if err := ValidatePercent(pct); err != nil {
		return 0, err
	}
	return pct, nil
}
