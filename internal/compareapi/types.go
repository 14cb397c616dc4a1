// Package compareapi exposes a comparator backend over HTTP/JSON, so a
// checker can verify collations hosted by a remote process. Any transport
// satisfying the comparator contract is acceptable to the checker; this is
// the one collatecheck ships.
package compareapi

// CompareRequest asks the server to evaluate s1 against s2 under a named
// ordering.
type CompareRequest struct {
	S1       string `json:"s1"`
	S2       string `json:"s2"`
	Ordering string `json:"ordering"`
}

// CompareResponse carries the comparator output.
type CompareResponse struct {
	Equal bool `json:"equal"`
	Less  bool `json:"lessThan"`
}

// ErrorResponse is the JSON body of any non-2xx reply.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Error codes mapped back to domain errors by the client.
const (
	CodeBadRequest      = "bad_request"
	CodeEmptyCorpus     = "empty_corpus"
	CodeUnknownOrdering = "unknown_ordering"
	CodeInternal        = "internal"
)
