// Package cube binds the puzzle operations a program can perform. The
// geometry itself lives behind Engine; this package translates calls made
// by compiled programs into engine requests.
package cube

import (
	"fmt"
	"strings"

	"github.com/funvibe/cubelang/internal/vm"
)

// Engine performs puzzle actions. Methods report problems a program can
// observe as *vm.Fault values.
type Engine interface {
	Size() int
	Turn(t Turn) error
	Rotate(r Rotation) error
	// Color returns the color at row, column of side as seen from the
	// current orientation. Row and column are 0-based.
	Color(side vm.Side, row, col int) (vm.Color, error)
	// Orient looks for an orientation in which every given side matches
	// its pattern and rotates to it.
	Orient(req OrientRequest) (bool, error)
	PushOrientation() error
	PopOrientation() error
	SuspendRotations() error
	ResumeRotations() error
}

// Layer is a range of layers counted from the turned side, 1 being the
// side itself. A zero Start or End is open on that side.
type Layer struct {
	Start, End int
}

func (l Layer) String() string {
	switch {
	case l.Start == l.End:
		return fmt.Sprint(l.Start)
	case l.Start == 0:
		return fmt.Sprintf(":%d", l.End)
	case l.End == 0:
		return fmt.Sprintf("%d:", l.Start)
	}
	return fmt.Sprintf("%d:%d", l.Start, l.End)
}

// Turn rotates layers of a side clockwise Amount quarter turns.
type Turn struct {
	Side   vm.Side
	Amount int
	Layers []Layer
}

// String renders the turn in move notation: R, R2, R', U[2], F[1:2].
func (t Turn) String() string {
	var sb strings.Builder
	sb.WriteString(t.Side.Letter())
	if len(t.Layers) != 1 || t.Layers[0] != (Layer{1, 1}) {
		parts := make([]string, len(t.Layers))
		for i, l := range t.Layers {
			parts[i] = l.String()
		}
		sb.WriteString("[" + strings.Join(parts, ", ") + "]")
	}
	sb.WriteString(amountSuffix(t.Amount))
	return sb.String()
}

// Rotation turns the whole cube around the axis through Side.
type Rotation struct {
	Side  vm.Side
	Twice bool
}

// String renders the rotation as X, Y or Z with a modifier.
func (r Rotation) String() string {
	axis, inverse := rotationAxis(r.Side)
	switch {
	case r.Twice:
		return axis + "2"
	case inverse:
		return axis + "'"
	}
	return axis
}

// Inverse returns the rotation undoing r.
func (r Rotation) Inverse() Rotation {
	if r.Twice {
		return r
	}
	return Rotation{Side: opposite(r.Side)}
}

// OrientRequest lists the patterns the sides must match. Keeping, when
// set, names the side that must stay in place.
type OrientRequest struct {
	Patterns map[vm.Side]*vm.Pattern
	Keeping  *vm.Side
}

func amountSuffix(amount int) string {
	switch amount % 4 {
	case 2:
		return "2"
	case 3:
		return "'"
	}
	return ""
}

func rotationAxis(s vm.Side) (axis string, inverse bool) {
	switch s {
	case vm.Right:
		return "X", false
	case vm.Left:
		return "X", true
	case vm.Top:
		return "Y", false
	case vm.Bottom:
		return "Y", true
	case vm.Front:
		return "Z", false
	}
	return "Z", true
}

func opposite(s vm.Side) vm.Side {
	switch s {
	case vm.Front:
		return vm.Back
	case vm.Back:
		return vm.Front
	case vm.Left:
		return vm.Right
	case vm.Right:
		return vm.Left
	case vm.Top:
		return vm.Bottom
	}
	return vm.Top
}
