package kit

import "encoding/json"

// encodeResult renders an endpoint response as tool-result text. Strings
// pass through; everything else is marshaled as JSON.
func encodeResult(resp any) (string, error) {
	if s, ok := resp.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
