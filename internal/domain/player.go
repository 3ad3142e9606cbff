package domain

// Player is an immutable entry in a league's draftable pool. Identity is the
// id (the data provider's dg_id), never the display name: name collisions and
// casing differences in upstream feeds must not affect pool membership.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OWGRRank int    `json:"owgrRank,omitempty"`
	DGRank   int    `json:"dgRank,omitempty"`
}

// Roster is one team's drafted players in pick order.
type Roster []Player

// ContainsID reports whether the roster holds the player with the given id.
func (r Roster) ContainsID(id string) bool {
	for _, p := range r {
		if p.ID == id {
			return true
		}
	}
	return false
}
