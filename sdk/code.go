package sdk

// Annotation ties a span of decompiled text to a machine address.
type Annotation struct {
	// Start and End are offsets into Code.Text, half-open.
	Start int64
	End   int64

	// Offset is the address the span was lifted from.
	Offset uint64
}

// Code is the product of one decompilation. A failed run still yields
// a Code whose Text explains the failure, so consumers always receive
// something renderable.
type Code struct {
	Text        string
	Annotations []Annotation
}

// Warning builds the degraded result used when the backend produced no
// parseable output.
func Warning(msg string) *Code {
	return &Code{Text: msg}
}
