// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // App title and counts
	Tabs      Region // Projects / Editors
	Content   Region // Active list
	Separator Region // Line above the log panel when open
	Logs      Region // Log panel when open
	Input     Region // Path prompt when open
	StatusBar Region
}

// Fixed heights for chrome elements
const (
	headerHeight    = 2 // Title + subtitle
	tabsHeight      = 1
	statusBarHeight = 1
	marginHeight    = 2 // Top + bottom margins
	separatorHeight = 1
	inputHeight     = 1
	minContent      = 4
)

// ComputeLayout calculates regions based on terminal dimensions. An open log
// panel takes 60% of the space left after the chrome.
func ComputeLayout(width, height int, logPanelOpen, inputOpen bool) Layout {
	fixedHeight := headerHeight + tabsHeight + statusBarHeight + marginHeight
	if logPanelOpen {
		fixedHeight += separatorHeight
	}
	if inputOpen {
		fixedHeight += inputHeight
	}
	availableHeight := max(height-fixedHeight, minContent)

	contentHeight, logsHeight := availableHeight, 0
	if logPanelOpen {
		contentHeight = max(int(float64(availableHeight)*0.4), 1)
		logsHeight = availableHeight - contentHeight
	}

	var l Layout
	y := 0
	l.Header = Region{X: 0, Y: y, Width: width, Height: headerHeight}
	y += headerHeight
	l.Tabs = Region{X: 0, Y: y, Width: width, Height: tabsHeight}
	y += tabsHeight
	l.Content = Region{X: 0, Y: y, Width: width, Height: contentHeight}
	y += contentHeight

	if logPanelOpen {
		l.Separator = Region{X: 0, Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight
		l.Logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}
	if inputOpen {
		l.Input = Region{X: 0, Y: y, Width: width, Height: inputHeight}
		y += inputHeight
	}
	l.StatusBar = Region{X: 0, Y: y, Width: width, Height: statusBarHeight}
	return l
}

// ContentListHeight returns the height available for the active list.
func (l Layout) ContentListHeight() int {
	return max(l.Content.Height-1, 1)
}
