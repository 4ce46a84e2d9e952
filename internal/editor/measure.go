package editor

// Measurer reports the height of the rendered container, or mounted=false when there is
// nothing on screen to measure yet.
type Measurer interface {
	Measure(view View) (height int, mounted bool)
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(view View) (int, bool)

func (f MeasureFunc) Measure(view View) (int, bool) {
	return f(view)
}

// IntrinsicMeasurer sizes the container to the tallest pane with a known intrinsic
// height.
type IntrinsicMeasurer struct{}

func (IntrinsicMeasurer) Measure(view View) (int, bool) {
	height, mounted := 0, false
	if view.Left != nil && view.Left.Height != nil {
		height, mounted = max(height, *view.Left.Height), true
	}
	if view.Right != nil && view.Right.Height != nil {
		height, mounted = max(height, *view.Right.Height), true
	}
	return height, mounted
}
