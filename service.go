package protoskema

import "github.com/reoring/protoskema/internal/ir"

// Service is an RPC service declaration. Methods are kept as raw JSON
// objects; they take no part in encoding.
type Service struct {
	object
	methods *ir.Object
}

// NewService returns a detached service without methods.
func NewService(name string, options map[string]any) *Service {
	return &Service{object: object{name: name, options: options}, methods: ir.NewObject()}
}

// Methods returns the method names in declaration order.
func (s *Service) Methods() []string { return s.methods.Keys() }

// Method returns the raw declaration of a method.
func (s *Service) Method(name string) (*JSONObject, bool) { return s.methods.Object(name) }

func (s *Service) Resolve() error {
	s.resolved = true
	return nil
}
