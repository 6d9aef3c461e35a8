package model

// Envelope is the body of every successful response.
//
// Meta is the pagination echo for paginated lists and "" everywhere else.
type Envelope struct {
	Data any `json:"data"`
	Meta any `json:"meta"`
}

// NoMeta is the meta value for responses without pagination.
const NoMeta = ""

// NewEnvelope wraps data with an empty meta.
func NewEnvelope(data any) Envelope {
	return Envelope{Data: data, Meta: NoMeta}
}
