package monitor

import "sort"

// Mode controls how selection commands are interpreted.
type Mode string

const (
	// ModeSingle tracks one network at a time; selecting replaces the
	// previous choice. An empty selection in this mode tracks every
	// visible network.
	ModeSingle Mode = "single"

	// ModeMulti tracks an explicit set of networks; selecting toggles
	// membership. An empty selection in this mode tracks nothing.
	ModeMulti Mode = "multi"
)

// selection is the set of network identifiers under active tracking. It is
// owned by the Session and must only be touched with the session lock held.
type selection struct {
	mode    Mode
	all     bool
	members map[string]struct{}
}

func newSelection() *selection {
	return &selection{mode: ModeSingle, members: make(map[string]struct{})}
}

// matches reports whether observations for id should be tracked.
func (s *selection) matches(id string) bool {
	if s.all {
		return true
	}
	if len(s.members) == 0 {
		return s.mode == ModeSingle
	}
	_, ok := s.members[id]
	return ok
}

// replace makes id the only tracked identifier.
func (s *selection) replace(id string) {
	s.all = false
	s.members = map[string]struct{}{id: {}}
}

// toggle adds id if absent and removes it if present. Toggling twice with
// the same id restores the original membership.
func (s *selection) toggle(id string) {
	s.all = false
	if _, ok := s.members[id]; ok {
		delete(s.members, id)
		return
	}
	s.members[id] = struct{}{}
}

// set replaces the membership with exactly ids.
func (s *selection) set(ids []string) {
	s.all = false
	s.members = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
}

// setAll tracks every visible network regardless of membership.
func (s *selection) setAll() {
	s.all = true
	s.members = make(map[string]struct{})
}

// clear empties the selection. In single mode that means "track everything
// visible", in multi mode "track nothing".
func (s *selection) clear() {
	s.all = false
	s.members = make(map[string]struct{})
}

// ids returns the explicit members in sorted order. It is empty both after
// setAll and after clear; Mode and the all flag disambiguate.
func (s *selection) ids() []string {
	out := make([]string, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
