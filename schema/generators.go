package schema

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces values for columns the caller leaves unset, most
// commonly surrogate keys.
type IDGenerator interface {
	Generate() (any, error)
	Type() string
}

// UUIDGenerator generates random (v4) UUIDs as strings.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() (any, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

func (UUIDGenerator) Type() string { return "uuid" }

// ULIDGenerator generates monotonic ULIDs as strings.
type ULIDGenerator struct {
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) Generate() (any, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return nil, fmt.Errorf("generate ulid: %w", err)
	}
	return id.String(), nil
}

func (g *ULIDGenerator) Type() string { return "ulid" }

// GeneratorRegistry maps generator names from struct tags to generators.
type GeneratorRegistry struct {
	generators map[string]IDGenerator
}

var defaultRegistry = NewGeneratorRegistry()

func NewGeneratorRegistry() *GeneratorRegistry {
	r := &GeneratorRegistry{generators: make(map[string]IDGenerator)}
	r.Register("uuid", UUIDGenerator{})
	r.Register("ulid", NewULIDGenerator())
	return r
}

func (r *GeneratorRegistry) Register(name string, g IDGenerator) {
	r.generators[name] = g
}

func (r *GeneratorRegistry) Get(name string) (IDGenerator, bool) {
	g, ok := r.generators[name]
	return g, ok
}

// RegisterGenerator adds a generator to the default registry used by tag
// parsing.
func RegisterGenerator(name string, g IDGenerator) {
	defaultRegistry.Register(name, g)
}
