package kanban

import "jobmate/recruiting-board/internal/pipeline"

// Event is a user gesture on the board.
type Event interface{ isEvent() }

// CardToggled flips a card's membership in the selection.
type CardToggled struct{ Card Card }

// DragStarted picks a card up.
type DragStarted struct{ Card Card }

// Dropped releases the in-flight drag over a column, named by its bound id
// ("column-CONVOCADO").
type Dropped struct{ ColumnID string }

// DragCancelled abandons the in-flight drag.
type DragCancelled struct{}

// BulkActionRequested applies a target stage to the current selection from
// the toolbar.
type BulkActionRequested struct{ Target pipeline.Stage }

func (CardToggled) isEvent()         {}
func (DragStarted) isEvent()         {}
func (Dropped) isEvent()             {}
func (DragCancelled) isEvent()       {}
func (BulkActionRequested) isEvent() {}
