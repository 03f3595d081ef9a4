package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// NeverExpires is the Anchor expireTime that means no expiration.
const NeverExpires = -1

var anchorSchema = func() *gojsonschema.Schema {
	schema, e := gojsonschema.NewSchema(gojsonschema.NewStringLoader(`{
		"type": "object",
		"properties": {
			"namePrefix": { "type": "string" },
			"expireTime": { "type": "integer" }
		},
		"required": ["namePrefix", "expireTime"]
	}`))
	if e != nil {
		logger.Panic("anchor schema error", zap.Error(e))
	}
	return schema
}()

// Anchor is a route advertisement record: a name prefix and an expiration time.
// It is sent to the local router as the payload of an anchor Interest.
type Anchor struct {
	// Prefix is the advertised name prefix.
	Prefix ccnx.Name `json:"namePrefix"`

	// ExpireTime is the expiration time in seconds since Unix epoch, or NeverExpires.
	ExpireTime int64 `json:"expireTime"`
}

// NewAnchor creates an Anchor.
func NewAnchor(prefix ccnx.Name, expireTime int64) Anchor {
	return Anchor{Prefix: prefix, ExpireTime: expireTime}
}

// WithExpireTime returns a copy with a different expiration time.
func (anchor Anchor) WithExpireTime(expireTime int64) Anchor {
	anchor.ExpireTime = expireTime
	return anchor
}

// Copy creates a deep copy.
func (anchor Anchor) Copy() Anchor {
	return Anchor{Prefix: anchor.Prefix.Copy(), ExpireTime: anchor.ExpireTime}
}

// Equal determines whether two anchors have the same prefix and expiration time.
func (anchor Anchor) Equal(other Anchor) bool {
	return anchor.ExpireTime == other.ExpireTime && anchor.Prefix.Equal(other.Prefix)
}

// Expires returns the expiration time, and false if the anchor never expires.
func (anchor Anchor) Expires() (t time.Time, ok bool) {
	if anchor.ExpireTime == NeverExpires {
		return time.Time{}, false
	}
	return time.Unix(anchor.ExpireTime, 0).UTC(), true
}

// String returns a display form, which is not parsable.
func (anchor Anchor) String() string {
	expire := "never"
	if t, ok := anchor.Expires(); ok {
		expire = t.Format(time.RFC3339)
	}
	return fmt.Sprintf("{ %s %s }", anchor.Prefix, expire)
}

// MarshalJSON implements json.Marshaler.
func (anchor Anchor) MarshalJSON() ([]byte, error) {
	type anchorJSON Anchor
	return json.Marshal(anchorJSON(anchor))
}

// UnmarshalJSON implements json.Unmarshaler.
func (anchor *Anchor) UnmarshalJSON(j []byte) error {
	result, e := anchorSchema.Validate(gojsonschema.NewBytesLoader(j))
	switch {
	case e != nil:
		return e
	case !result.Valid():
		var b strings.Builder
		fmt.Fprint(&b, "anchor failed schema validation:")
		for _, desc := range result.Errors() {
			fmt.Fprint(&b, " ", desc)
		}
		return errors.New(b.String())
	}

	type anchorJSON Anchor
	var a anchorJSON
	if e := json.Unmarshal(j, &a); e != nil {
		return e
	}
	*anchor = Anchor(a)
	return nil
}

// Serialize returns the JSON encoding used as anchor Interest payload.
func (anchor Anchor) Serialize() []byte {
	j, e := anchor.MarshalJSON()
	if e != nil {
		logger.Panic("anchor serialize error", zap.Error(e))
	}
	return j
}

// ParseAnchorJSON parses an Anchor from JSON.
func ParseAnchorJSON(j []byte) (anchor Anchor, e error) {
	e = anchor.UnmarshalJSON(j)
	return anchor, e
}

// DeserializeAnchor parses an anchor Interest payload.
func DeserializeAnchor(payload []byte) (Anchor, error) {
	return ParseAnchorJSON(payload)
}
