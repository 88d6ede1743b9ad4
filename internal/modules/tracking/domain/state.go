package domain

import (
	"encoding/json"
	"sort"
)

// Flags record which notifications were sent for one session. Both flags
// only ever move from false to true.
type Flags struct {
	NotifiedStart bool `json:"notifiedStart"`
	NotifiedEnd   bool `json:"notifiedEnd"`
}

// Merge is the monotonic join of two flag sets.
func (f Flags) Merge(other Flags) Flags {
	return Flags{
		NotifiedStart: f.NotifiedStart || other.NotifiedStart,
		NotifiedEnd:   f.NotifiedEnd || other.NotifiedEnd,
	}
}

// State maps subject id -> session id -> flags. It is the only place durable
// notification flags are mutated.
type State struct {
	subjects map[string]map[string]Flags
}

func NewState() *State {
	return &State{subjects: map[string]map[string]Flags{}}
}

// EntryFor returns the flags for a session, inserting a zero entry on first
// sighting.
func (s *State) EntryFor(subjectID, sessionID string) Flags {
	sessions := s.sessionsOf(subjectID)
	flags, ok := sessions[sessionID]
	if !ok {
		sessions[sessionID] = Flags{}
	}
	return flags
}

// Lookup reads flags without inserting.
func (s *State) Lookup(subjectID, sessionID string) (Flags, bool) {
	flags, ok := s.subjects[subjectID][sessionID]
	return flags, ok
}

// Advance merges next into the stored flags; a set flag is never cleared.
func (s *State) Advance(subjectID, sessionID string, next Flags) Flags {
	sessions := s.sessionsOf(subjectID)
	merged := sessions[sessionID].Merge(next)
	sessions[sessionID] = merged
	return merged
}

func (s *State) Subjects() []string {
	out := make([]string, 0, len(s.subjects))
	for id := range s.subjects {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *State) Sessions(subjectID string) []string {
	sessions := s.subjects[subjectID]
	out := make([]string, 0, len(sessions))
	for id := range sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len counts tracked sessions across all subjects.
func (s *State) Len() int {
	n := 0
	for _, sessions := range s.subjects {
		n += len(sessions)
	}
	return n
}

func (s *State) sessionsOf(subjectID string) map[string]Flags {
	if s.subjects == nil {
		s.subjects = map[string]map[string]Flags{}
	}
	sessions, ok := s.subjects[subjectID]
	if !ok {
		sessions = map[string]Flags{}
		s.subjects[subjectID] = sessions
	}
	return sessions
}

func (s *State) MarshalJSON() ([]byte, error) {
	if s.subjects == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.subjects)
}

func (s *State) UnmarshalJSON(raw []byte) error {
	decoded := map[string]map[string]Flags{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	for subjectID, sessions := range decoded {
		if sessions == nil {
			decoded[subjectID] = map[string]Flags{}
		}
	}
	s.subjects = decoded
	return nil
}
