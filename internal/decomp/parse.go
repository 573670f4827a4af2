package decomp

import (
	"github.com/tidwall/gjson"

	"github.com/scry-re/scry/sdk"
)

// ParsePayload translates the engine's decompilation payload into a
// Code. The payload is a JSON object:
//
//	{
//	  "code": "int main() {...}",
//	  "annotations": [{"type": "offset", "start": 0, "end": 3, "offset": 4096}],
//	  "errors": ["..."]
//	}
//
// Only annotations of type "offset" carrying numeric start, end, and
// offset fields are kept; anything else is skipped entry by entry.
// Error strings are appended to the code text one per line so backend
// diagnostics stay visible. Input that is not a non-empty JSON object
// returns ok false.
func ParsePayload(raw []byte) (*sdk.Code, bool) {
	if !gjson.ValidBytes(raw) {
		return nil, false
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() || len(root.Map()) == 0 {
		return nil, false
	}

	code := &sdk.Code{Text: root.Get("code").String()}

	for _, entry := range root.Get("annotations").Array() {
		if !entry.IsObject() {
			continue
		}
		if entry.Get("type").String() != "offset" {
			continue
		}
		start := entry.Get("start")
		end := entry.Get("end")
		offset := entry.Get("offset")
		if start.Type != gjson.Number || end.Type != gjson.Number || offset.Type != gjson.Number {
			continue
		}
		code.Annotations = append(code.Annotations, sdk.Annotation{
			Start:  start.Int(),
			End:    end.Int(),
			Offset: offset.Uint(),
		})
	}

	for _, line := range root.Get("errors").Array() {
		if line.Type != gjson.String {
			continue
		}
		code.Text += line.String() + "\n"
	}

	return code, true
}
