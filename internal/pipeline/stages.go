package pipeline

// Stage is a state of the run state machine.
//
// A run moves ValidateArgs → CheckTools → AcquireReads → Trim → Sample →
// Assemble → Done. Any failure moves it to the terminal Fail state.
// The numeric value of an executing stage is its step number in log lines.
type Stage int

const (
	StageValidateArgs Stage = iota
	StageCheckTools
	StageAcquireReads
	StageTrim
	StageSample
	StageAssemble
	StageDone
	StageFail
)

var stageNames = map[Stage]string{
	StageValidateArgs: "validate-args",
	StageCheckTools:   "check-tools",
	StageAcquireReads: "acquire",
	StageTrim:         "trim",
	StageSample:       "sample",
	StageAssemble:     "assemble",
	StageDone:         "done",
	StageFail:         "fail",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Step is the 1-based step number used in log lines.
func (s Stage) Step() int {
	return int(s)
}

// Terminal reports whether no transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFail
}

// Next returns the state after s, given whether s succeeded.
func (s Stage) Next(ok bool) Stage {
	if s.Terminal() {
		return s
	}
	if !ok {
		return StageFail
	}
	return s + 1
}

// Lifecycle returns the executing stages in order.
func Lifecycle() []Stage {
	var stages []Stage
	for s := StageValidateArgs.Next(true); !s.Terminal(); s = s.Next(true) {
		stages = append(stages, s)
	}
	return stages
}
