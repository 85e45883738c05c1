package endpoints

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ParamKind is the JSON type of a parameter.
type ParamKind int

const (
	KindString ParamKind = iota
	KindBool
	KindNumber
)

func (k ParamKind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	default:
		return "string"
	}
}

// ParamSpec describes one named parameter of an operation.
type ParamSpec struct {
	Name        string
	Kind        ParamKind
	Required    bool
	Description string
}

// Params are the named arguments of an invocation, without the body.
type Params map[string]any

// Has reports whether name is present and not null.
func (p Params) Has(name string) bool {
	v, ok := p[name]
	return ok && v != nil
}

// String returns the parameter as a string. Numbers are formatted; anything
// else yields "".
func (p Params) String(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Bool returns the parameter as a bool, or nil when absent. The strings
// "true" and "false" are accepted as well.
func (p Params) Bool(name string) *bool {
	switch v := p[name].(type) {
	case bool:
		return &v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}

// Int64 returns the parameter as an integer, or 0 when absent or not a number.
func (p Params) Int64(name string) int64 {
	switch v := p[name].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// decodeBody converts a free-form body into the API resource type T.
func decodeBody[T any](tool string, body map[string]any) (*T, error) {
	out := new(T)
	if len(body) == 0 {
		return out, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &ValidationError{Tool: tool, Param: BodyParam, Reason: fmt.Sprintf("cannot encode body: %v", err)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, &ValidationError{Tool: tool, Param: BodyParam, Reason: fmt.Sprintf("body does not match the resource: %v", err)}
	}
	return out, nil
}
