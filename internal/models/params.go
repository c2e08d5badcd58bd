// internal/models/params.go
package models

// ParamValue is one slot value as extracted by the conversational platform.
// The set of implementations is closed: Scalar, PersonName, TimeOfDay, Unknown.
type ParamValue interface {
	isParamValue()
}

// Scalar is a plain string value.
type Scalar string

// PersonName is the platform's person entity. Original holds the text as the
// user typed it.
type PersonName struct {
	Original string
}

// TimeOfDay is the platform's time entity on a 24-hour clock.
type TimeOfDay struct {
	Hours   int
	Minutes int
}

// Unknown holds any shape the classifier did not recognize.
type Unknown struct {
	Raw interface{}
}

func (Scalar) isParamValue()     {}
func (PersonName) isParamValue() {}
func (TimeOfDay) isParamValue()  {}
func (Unknown) isParamValue()    {}

// Parameter names used by the quote form.
const (
	ParamName        = "name"
	ParamEmail       = "email_address"
	ParamContactTime = "contact_time"
)

// IntentRequest is one dispatch input. It is not modified during dispatch.
type IntentRequest struct {
	IntentName string
	Parameters map[string]ParamValue
}

// Param returns the named parameter and whether it was present.
func (r IntentRequest) Param(name string) (ParamValue, bool) {
	v, ok := r.Parameters[name]
	return v, ok && v != nil
}

// HasAll reports whether every named parameter is present.
func (r IntentRequest) HasAll(names ...string) bool {
	for _, n := range names {
		if _, ok := r.Param(n); !ok {
			return false
		}
	}
	return true
}
