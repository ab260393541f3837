package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decode parses a JSON body returned by one of the Dispatch methods.
// Failures are reported as [KindDecode] errors tagged with op.
func Decode[T any](op, body string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return v, &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("decoding body: %w", err)}
	}

	return v, nil
}

func parseInt(op, body string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(body), 10, 64)
	if err != nil {
		return 0, &Error{Kind: KindDecode, Op: op, Body: body, Err: err}
	}

	return n, nil
}
