package draft

// advanceTurn moves the turn pointer one step in snake order. When the
// pointer would step past either end, the direction flips and the pointer
// stays on the edge team, so the edge team picks twice in a row:
// 0,1,...,N-1,N-1,N-2,...,0,0,1,... This repeat-at-the-edge behavior is what
// the production clients were built against; do not "fix" it to a pure snake
// without product sign-off.
func (s *State) advanceTurn() {
	next := s.TurnIndex + s.Direction
	switch {
	case next >= len(s.Teams):
		s.Direction = -1
		s.TurnIndex = len(s.Teams) - 1
	case next < 0:
		s.Direction = 1
		s.TurnIndex = 0
	default:
		s.TurnIndex = next
	}
}
