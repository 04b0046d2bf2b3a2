package cube

import (
	"strings"

	"github.com/funvibe/cubelang/internal/vm"
)

// Recorder is an Engine that keeps no cube state. It records the actions
// in move notation and checks that layer indices fit a cube of its size.
// Queries about the state of the cube fail with a ValueFault.
type Recorder struct {
	size      int
	actions   []string
	saved     [][]Rotation
	suspended bool
}

func NewRecorder(size int) *Recorder {
	return &Recorder{size: size}
}

func (r *Recorder) Size() int { return r.size }

// Actions returns the recorded moves in order.
func (r *Recorder) Actions() []string { return r.actions }

// Notation joins the recorded moves with spaces.
func (r *Recorder) Notation() string { return strings.Join(r.actions, " ") }

func (r *Recorder) Turn(t Turn) error {
	for _, l := range t.Layers {
		if err := r.checkLayer(l); err != nil {
			return err
		}
	}
	r.actions = append(r.actions, t.String())
	return nil
}

func (r *Recorder) checkLayer(l Layer) error {
	for _, i := range []int{l.Start, l.End} {
		if i != 0 && (i < 1 || i > r.size) {
			return vm.Errorf(vm.ValueFault, "layer %d is out of range for a cube of size %d", i, r.size)
		}
	}
	if l.Start != 0 && l.End != 0 && l.Start > l.End {
		return vm.Errorf(vm.ValueFault, "empty layer range %s", l)
	}
	return nil
}

func (r *Recorder) Rotate(rot Rotation) error {
	r.actions = append(r.actions, rot.String())
	if n := len(r.saved); n > 0 {
		r.saved[n-1] = append(r.saved[n-1], rot)
	}
	return nil
}

func (r *Recorder) Color(side vm.Side, row, col int) (vm.Color, error) {
	return 0, vm.Errorf(vm.ValueFault, "cannot read %s[%d, %d]: the cube state is not tracked", side, row, col)
}

func (r *Recorder) Orient(OrientRequest) (bool, error) {
	return false, vm.Errorf(vm.ValueFault, "cannot orient: the cube state is not tracked")
}

// PushOrientation starts collecting rotations so that PopOrientation can
// undo them.
func (r *Recorder) PushOrientation() error {
	r.saved = append(r.saved, nil)
	return nil
}

func (r *Recorder) PopOrientation() error {
	n := len(r.saved)
	if n == 0 {
		return vm.Errorf(vm.ValueFault, "orientation stack is empty")
	}
	undo := r.saved[n-1]
	r.saved = r.saved[:n-1]
	// The undo cancels out, so enclosing frames do not record it.
	for i := len(undo) - 1; i >= 0; i-- {
		r.actions = append(r.actions, undo[i].Inverse().String())
	}
	return nil
}

func (r *Recorder) SuspendRotations() error {
	r.suspended = true
	return nil
}

func (r *Recorder) ResumeRotations() error {
	if !r.suspended {
		return vm.Errorf(vm.ValueFault, "rotations are not suspended")
	}
	r.suspended = false
	return nil
}
