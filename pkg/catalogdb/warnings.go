package catalogdb

import "fmt"

// WarningCategory tags a Warning.
type WarningCategory int

const (
	WarningGeneral WarningCategory = iota
	WarningUser
	WarningDeprecation
	WarningSkippedTest
)

// String returns the category name used as the warning prefix.
func (c WarningCategory) String() string {
	switch c {
	case WarningGeneral:
		return "CatalogdbWarning"
	case WarningUser:
		return "UserWarning"
	case WarningDeprecation:
		return "DeprecationWarning"
	case WarningSkippedTest:
		return "SkippedTestWarning"
	default:
		return fmt.Sprintf("Warning(%d)", c)
	}
}

// Warning is advisory. It is logged, never returned as an error.
type Warning struct {
	Category WarningCategory
	Message  string
}

func NewUserWarning(format string, args ...interface{}) Warning {
	return Warning{Category: WarningUser, Message: fmt.Sprintf(format, args...)}
}

func NewDeprecationWarning(format string, args ...interface{}) Warning {
	return Warning{Category: WarningDeprecation, Message: fmt.Sprintf(format, args...)}
}

func NewSkippedTestWarning(format string, args ...interface{}) Warning {
	return Warning{Category: WarningSkippedTest, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	if w.Message == "" {
		return w.Category.String()
	}
	return w.Category.String() + ": " + w.Message
}

// Emit logs w through logger. A nil logger drops the warning.
func (w Warning) Emit(logger Logger) {
	if logger == nil {
		return
	}
	logger.Warn("%s", w.String())
}
