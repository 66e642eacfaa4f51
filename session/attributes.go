package session

import (
	"context"
	"encoding/json"
)

// Page attribute names consumed by the page shell.
const (
	AttrProgram       = "program"
	AttrPageName      = "pageName"
	AttrPageRemark    = "pageRemark"
	AttrAuthGroupMenu = "authGroupMenu"
	AttrLoginUser     = "loginUser"
	AttrScriptSession = "scriptSession"
	AttrMenuJSON      = "menuJson"
)

// Attributes are the request-scoped values handed to page rendering.
type Attributes map[string]any

func NewAttributes() Attributes {
	return make(Attributes)
}

func (a Attributes) Set(name string, value any) {
	a[name] = value
}

func (a Attributes) Get(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// String returns a string attribute, or "" when absent or not a string.
func (a Attributes) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// SetJSON stores value serialized as a JSON string.
func (a Attributes) SetJSON(name string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	a[name] = string(b)
	return nil
}

// WithAttributes attaches attrs to ctx.
func WithAttributes(ctx context.Context, attrs Attributes) context.Context {
	return context.WithValue(ctx, attributesKey, attrs)
}

// AttributesFromContext returns the attributes attached to ctx, or an empty set.
func AttributesFromContext(ctx context.Context) Attributes {
	attrs, ok := ctx.Value(attributesKey).(Attributes)
	if !ok {
		return NewAttributes()
	}
	return attrs
}
