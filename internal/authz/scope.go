package authz

import (
	"encoding/json"
	"sort"
)

// Scope - либо "все", либо конкретный набор идентификаторов.
// Нулевое значение - пустой набор (нет доступа).
type Scope struct {
	all bool
	ids map[string]struct{}
}

func AllScope() Scope {
	return Scope{all: true}
}

func SetScope(ids ...string) Scope {
	s := Scope{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s Scope) IsAll() bool {
	return s.all
}

func (s Scope) IsEmpty() bool {
	return !s.all && len(s.ids) == 0
}

func (s Scope) Contains(id string) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

// IDs - отсортированный набор; для "все" возвращает nil.
func (s Scope) IDs() []string {
	if s.all {
		return nil
	}
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type scopeJSON struct {
	All bool     `json:"all"`
	IDs []string `json:"ids,omitempty"`
}

func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(scopeJSON{All: s.all, IDs: s.IDs()})
}
