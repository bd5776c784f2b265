package models

// JSONValue is a generic type to represent any JSON value.
// This can be a string, json.Number, boolean, nil, JSONObject or JSONArray.
type JSONValue interface{}

// JSONObject represents a JSON object, which is a map of strings to JSONValues.
type JSONObject map[string]JSONValue

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// IntermediateRepresentation holds a parsed JSON document in a form the
// generator can walk.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}

// Object returns the root as a JSONObject, if it is one.
func (ir IntermediateRepresentation) Object() (JSONObject, bool) {
	obj, ok := ir.Root.(JSONObject)
	return obj, ok
}

// FirstObject returns the first object-valued element of arr.
func FirstObject(arr JSONArray) (JSONObject, bool) {
	for _, v := range arr {
		if obj, ok := v.(JSONObject); ok {
			return obj, true
		}
	}
	return nil, false
}
