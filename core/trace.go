package skate

// Trace captures one top-level evaluation: the input line, what the builtins
// printed, and either the result or the error.
type Trace struct {
	Input     string
	Result    Expr   // zero Expr when Error is set
	Output    string // text written to the environment's Out during the eval
	Error     string // non-empty on error
	Timestamp string // ISO 8601
}

// Failed reports whether the evaluation ended in an error.
func (t *Trace) Failed() bool {
	return t.Error != ""
}

// ToGo converts a Trace to a JSON-friendly map for the traces op.
func (t *Trace) ToGo() map[string]any {
	m := map[string]any{
		"input":     t.Input,
		"output":    t.Output,
		"timestamp": t.Timestamp,
	}
	if t.Failed() {
		m["error"] = t.Error
		m["result"] = nil
	} else {
		m["error"] = nil
		m["result"] = t.Result.ToGo()
	}
	return m
}

// Recorder receives every trace a session produces.
type Recorder interface {
	Record(sessionID string, t Trace) error
}
