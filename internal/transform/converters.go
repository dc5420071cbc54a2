package transform

// Content is a push body packed for a converter, with the MIME type
// and charset taken from the push headers.
type Content struct {
	Body    []byte
	Type    string
	Charset string
}

// ConvertFunc turns push content into its compact binary form, or
// fails. A converter is total over its input: it either returns the
// converted body or an explicit error, never a partial result.
type ConvertFunc func(c *Content) ([]byte, error)

type converter struct {
	resultType string
	fn         ConvertFunc
}

// Conversion is dispatched on MIME type through a registration table;
// content types without a registered converter pass through unchanged.
var converters = map[string]converter{}

// RegisterConverter binds a converter to a source content type. The
// converted body is relabelled with resultType. Registration happens
// at startup, before any push is processed.
func RegisterConverter(sourceType, resultType string, fn ConvertFunc) {
	converters[sourceType] = converter{resultType: resultType, fn: fn}
}

// ConvertContent applies the registered converter for the content's
// type, mutating body and type on success. Unknown types are accepted
// unmodified. Returns false only when a registered converter failed.
func ConvertContent(c *Content) bool {
	conv, ok := converters[c.Type]
	if !ok {
		return true
	}
	newBody, err := conv.fn(c)
	if err != nil {
		return false
	}
	c.Body = newBody
	c.Type = conv.resultType
	return true
}
