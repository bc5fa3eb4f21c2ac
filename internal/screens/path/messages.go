package path

import (
	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/guard"
)

// effectDoneMsg carries the completion of an effect back into the update
// loop, tagged with the token of the session that started it.
type effectDoneMsg struct {
	Token guard.Token
	Event engine.Event
}
