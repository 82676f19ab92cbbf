package request

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"
)

// ToJsonReq converts a Go object to a JSON-encoded HTTP request payload.
// It serializes the provided payload to JSON format and wraps it in a buffer
// for sending in HTTP requests.
func ToJsonReq(payload interface{}) (*bytes.Buffer, error) {
	c, e := json.Marshal(payload)
	if e != nil {
		return nil, e
	}

	bytePayload := bytes.NewBuffer(c)
	return bytePayload, nil
}

// Call makes an HTTP request using the provided request object and decodes
// the JSON response body into the provided response interface. The client
// carries a timeout so a hung provider call bounds itself instead of
// stalling the batch it belongs to.
func Call(req *http.Request, response interface{}) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Do(req)
	if err != nil {
		return resp, err
	}
	defer resp.Body.Close()

	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		// Error responses often carry an empty or non-JSON body; the
		// caller still needs the status code to classify them.
		if resp.StatusCode >= http.StatusBadRequest {
			return resp, nil
		}
		return resp, err
	}
	return resp, nil
}

// BearerAuth formats a token for an Authorization header.
func BearerAuth(token string) string {
	return "Bearer " + token
}
