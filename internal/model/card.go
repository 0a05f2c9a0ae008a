package model

// Card is an objective card naming a trophy to collect
type Card struct {
	Trophy Trophy `json:"trophy"`
	Found  bool   `json:"found"`
}
