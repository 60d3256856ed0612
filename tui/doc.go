// Package tui plays the puzzle in a terminal with bubbletea.
//
// The model binds itself to the engine as render sink and notifier, maps
// mouse cells onto canvas coordinates (one cell per canvas unit, offset by
// the header) and drives the auto-solver with tea.Tick messages instead of
// a goroutine. Use the "terminal" profile, whose geometry is sized in cells.
//
//	m, err := tui.New(config, 4)
//	if err != nil {
//		return err
//	}
//	return tui.Run(ctx, m)
package tui
