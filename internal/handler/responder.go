package handler

import (
	"encoding/json"
	"net/http"

	"github.com/stefanpapad/target-balancer/internal/balancer"
)

type errorBody struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// JSONResponder builds JSON error responses for proxy failures. It is
// the production implementation of the balancer's ErrorResponder
// contract.
type JSONResponder struct{}

// NewJSONResponder creates a JSONResponder.
func NewJSONResponder() *JSONResponder {
	return &JSONResponder{}
}

// Respond builds an HTTP-shaped error response with a JSON body.
func (jr *JSONResponder) Respond(statusCode int, message string) *balancer.Response {
	body, err := json.Marshal(errorBody{Status: statusCode, Error: message})
	if err != nil {
		body = []byte(message)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &balancer.Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
	}
}
