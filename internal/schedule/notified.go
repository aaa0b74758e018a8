package schedule

import "sort"

// NotifiedSet records which reminders were already sent during a session.
// Dispatch functions never mutate the set they receive; they return a new one.
type NotifiedSet struct {
	keys map[string]struct{}
}

// NewNotifiedSet returns a set holding keys.
func NewNotifiedSet(keys ...string) NotifiedSet {
	s := NotifiedSet{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Has reports whether key was already notified.
func (s NotifiedSet) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of notified keys.
func (s NotifiedSet) Len() int {
	return len(s.keys)
}

// Keys returns the notified keys in sorted order.
func (s NotifiedSet) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s NotifiedSet) clone() NotifiedSet {
	c := NotifiedSet{keys: make(map[string]struct{}, len(s.keys)+1)}
	for k := range s.keys {
		c.keys[k] = struct{}{}
	}
	return c
}

func (s *NotifiedSet) add(key string) {
	if s.keys == nil {
		s.keys = make(map[string]struct{})
	}
	s.keys[key] = struct{}{}
}
