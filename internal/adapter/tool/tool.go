// Package tool holds the callable tools exposed to the model. Every tool
// returns a serialized result union, {success:true,...} or
// {success:false,error}, and never lets an error escape its Call boundary;
// the orchestrator and the chat UI rely on that single invariant.
package tool

import "encoding/json"

func encodeResult(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"success":false,"error":"failed to encode tool result"}`
	}
	return string(data)
}
