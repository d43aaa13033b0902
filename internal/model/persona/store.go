package persona

// Store exposes roster lookups for the generator and HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	FindByExpertise(topic string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the roster in declaration order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// FindByExpertise returns the first persona handling topic.
func (s *MemoryStore) FindByExpertise(topic string) (Persona, bool) {
	for _, item := range s.items {
		for _, area := range item.Expertise {
			if area == topic {
				return item, true
			}
		}
	}
	return Persona{}, false
}
