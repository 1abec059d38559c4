package model

// Pair is an unordered pair of code identifiers as supplied by the
// validation/integration pipeline. Both official associations and
// official incompatibilities arrive in this shape.
type Pair struct {
	A string
	B string
}

// FrequencyPair is an observed co-occurrence of two codes with the number
// of independent observations corroborating it.
type FrequencyPair struct {
	A       string
	B       string
	Support int
}
