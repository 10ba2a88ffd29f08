// Package textdiff computes character-level edit scripts between two texts and
// renders them as styled HTML.
package textdiff

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/hpungsan/specdiff/internal/errors"
)

// Mode selects the post-processing applied to the raw edit script.
type Mode string

const (
	// ModeRaw keeps the minimal edit script.
	ModeRaw Mode = "raw"
	// ModeSemantic moves edit boundaries to word and sentence breaks.
	ModeSemantic Mode = "semantic"
	// ModeEfficiency merges small edits into larger ones using the edit cost.
	ModeEfficiency Mode = "efficiency"
)

// Modes lists every Mode.
var Modes = []Mode{ModeRaw, ModeSemantic, ModeEfficiency}

// ParseMode accepts the mode names and their short forms (sem, eff).
// Empty means efficiency.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "eff", "efficiency":
		return ModeEfficiency, nil
	case "sem", "semantic":
		return ModeSemantic, nil
	case "raw":
		return ModeRaw, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown diff mode %q (want raw, semantic or efficiency)", s))
}

const (
	DefaultTimeout  = 5 * time.Second
	DefaultEditCost = 4
)

// Options controls one diff computation.
type Options struct {
	// Mode picks the cleanup. Empty means efficiency; an unknown value runs raw.
	Mode Mode
	// Timeout bounds the computation. When it runs out the best result found so
	// far is returned. Zero or negative means unbounded.
	Timeout time.Duration
	// EditCost is the cost of an empty edit in efficiency cleanup.
	EditCost int
}

// DefaultOptions returns efficiency cleanup with a 5 second bound and edit cost 4.
func DefaultOptions() Options {
	return Options{Mode: ModeEfficiency, Timeout: DefaultTimeout, EditCost: DefaultEditCost}
}

// Op is the operation of a segment.
type Op int8

const (
	OpDelete Op = -1
	OpEqual  Op = 0
	OpInsert Op = 1
)

func (o Op) String() string {
	switch o {
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	}
	return "equal"
}

// MarshalText encodes the op by name.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Segment is one span of the edit script.
type Segment struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Result is an ordered edit script. Keeping the delete and equal spans
// rebuilds the source text; keeping insert and equal rebuilds the target.
type Result struct {
	Mode     Mode          `json:"mode"`
	Segments []Segment     `json:"segments"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Stats summarizes a Result.
type Stats struct {
	Equals        int `json:"equals"`
	Inserts       int `json:"inserts"`
	Deletes       int `json:"deletes"`
	InsertedChars int `json:"inserted_chars"`
	DeletedChars  int `json:"deleted_chars"`
}

// Diff computes the edit script from a to b.
func Diff(a, b string, opts Options) Result {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	if opts.Timeout > 0 {
		dmp.DiffTimeout = opts.Timeout
	}
	if opts.EditCost > 0 {
		dmp.DiffEditCost = opts.EditCost
	}
	if opts.Mode == "" {
		opts.Mode = ModeEfficiency
	}

	start := time.Now()
	diffs := dmp.DiffMain(a, b, true)
	switch opts.Mode {
	case ModeSemantic:
		diffs = dmp.DiffCleanupSemantic(diffs)
	case ModeEfficiency:
		diffs = dmp.DiffCleanupEfficiency(diffs)
	default:
		// Unknown modes get no cleanup and are reported as raw.
		opts.Mode = ModeRaw
	}

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		segments = append(segments, Segment{Op: fromDMP(d.Type), Text: d.Text})
	}

	return Result{Mode: opts.Mode, Segments: segments, Elapsed: time.Since(start)}
}

func fromDMP(op diffmatchpatch.Operation) Op {
	switch op {
	case diffmatchpatch.DiffDelete:
		return OpDelete
	case diffmatchpatch.DiffInsert:
		return OpInsert
	}
	return OpEqual
}

// Source rebuilds the first input.
func (r Result) Source() string {
	return r.join(OpDelete)
}

// Target rebuilds the second input.
func (r Result) Target() string {
	return r.join(OpInsert)
}

func (r Result) join(keep Op) string {
	var b strings.Builder
	for _, s := range r.Segments {
		if s.Op == OpEqual || s.Op == keep {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Identical reports whether the script has no edits.
func (r Result) Identical() bool {
	for _, s := range r.Segments {
		if s.Op != OpEqual {
			return false
		}
	}
	return true
}

// Stats counts segments by op. Character counts are in runes.
func (r Result) Stats() Stats {
	var st Stats
	for _, s := range r.Segments {
		switch s.Op {
		case OpEqual:
			st.Equals++
		case OpInsert:
			st.Inserts++
			st.InsertedChars += utf8.RuneCountInString(s.Text)
		case OpDelete:
			st.Deletes++
			st.DeletedChars += utf8.RuneCountInString(s.Text)
		}
	}
	return st
}
