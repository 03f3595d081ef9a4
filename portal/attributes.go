package portal

import "strings"

// Attributes contains portal behavior flags.
type Attributes struct {
	// NonBlocking causes Send to fail immediately instead of waiting when the transport is congested.
	NonBlocking bool `json:"nonBlocking"`

	// Logging enables debug logging of portal operations.
	Logging bool `json:"logging"`
}

// Predefined attribute sets.
var (
	AttributesBlocking    = Attributes{}
	AttributesNonBlocking = Attributes{NonBlocking: true}
)

func (attrs Attributes) String() string {
	var flags []string
	if attrs.NonBlocking {
		flags = append(flags, "non-blocking")
	} else {
		flags = append(flags, "blocking")
	}
	if attrs.Logging {
		flags = append(flags, "logging")
	}
	return strings.Join(flags, ",")
}
