package game

// Cell states as exposed to clients.
const (
	CellHidden   = "hidden"
	CellRevealed = "revealed"
	CellMatched  = "matched"
)

// CellView is the client-facing representation of one grid cell.
// Value is only included when the cell is face up.
type CellView struct {
	Index int    `json:"index"`
	State string `json:"state"`
	Value string `json:"value,omitempty"`
}

// Snapshot is a read-only copy of the board and turn state.
type Snapshot struct {
	State          string     `json:"state"`
	Rows           int        `json:"rows"`
	Cols           int        `json:"cols"`
	Attempts       int        `json:"attempts"`
	TriesLeft      int        `json:"triesLeft"`
	TriesBudget    int        `json:"triesBudget"`
	PairsRemaining int        `json:"pairsRemaining"`
	Cells          []CellView `json:"cells"`
}

// Snapshot builds the client view. Hidden cells do not expose their value.
func (e *Engine) Snapshot() Snapshot {
	views := make([]CellView, len(e.cells))
	for i, c := range e.cells {
		v := CellView{Index: i, State: CellHidden}
		switch {
		case c.Matched():
			v.State, v.Value = CellMatched, c.Value()
		case e.revealed[i]:
			v.State, v.Value = CellRevealed, c.Value()
		}
		views[i] = v
	}
	return Snapshot{
		State:          e.state.String(),
		Rows:           e.cfg.Rows,
		Cols:           e.cfg.Cols,
		Attempts:       e.attempts,
		TriesLeft:      e.triesLeft,
		TriesBudget:    e.cfg.TriesBudget,
		PairsRemaining: e.pairsRemaining,
		Cells:          views,
	}
}
