package facet

// ParamPrefix is prepended to a filter's name to form its request-parameter
// key, e.g. filter "keyword" reads parameter "q_keyword".
const ParamPrefix = "q_"

// Params is the decoded request-parameter map handed in by the transport
// layer. It has the same shape as url.Values, so callers can convert with a
// plain type conversion.
type Params map[string][]string

// Get returns the first value for key, or "" if the key is absent.
func (p Params) Get(key string) string {
	if vs := p[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns all values for key. Multi-value filters are submitted with
// a "[]" suffix on the wire by some form encoders, so both spellings are
// accepted and merged.
func (p Params) Values(key string) []string {
	vs := p[key]
	if bracketed := p[key+"[]"]; len(bracketed) > 0 {
		vs = append(append([]string{}, vs...), bracketed...)
	}
	return vs
}

// Has reports whether the key is present with at least one value.
func (p Params) Has(key string) bool {
	return len(p[key]) > 0 || len(p[key+"[]"]) > 0
}
