package history

import (
	"crypto/rand"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// PlantKind groups species in the forest.
type PlantKind string

const (
	KindTree   PlantKind = "tree"
	KindFlower PlantKind = "flower"
	KindBush   PlantKind = "bush"
)

// Species is one entry of the plant catalogue.
type Species struct {
	Kind PlantKind
	Name string
}

// Catalogue lists the plants a completed focus phase can grow.
var Catalogue = []Species{
	{Kind: KindTree, Name: "Oak Tree"},
	{Kind: KindTree, Name: "Pine Tree"},
	{Kind: KindTree, Name: "Palm Tree"},
	{Kind: KindFlower, Name: "Cherry Blossom"},
	{Kind: KindFlower, Name: "Rose"},
	{Kind: KindFlower, Name: "Sunflower"},
	{Kind: KindBush, Name: "Fern"},
	{Kind: KindBush, Name: "Leaf"},
}

// Plant is one forest entry, grown by a completed focus phase.
type Plant struct {
	ID        string    `json:"id"`
	Kind      PlantKind `json:"kind"`
	Species   string    `json:"species"`
	PlantedAt time.Time `json:"plantedAt"`
}

// Forest is the ordered set of plants, oldest first.
type Forest struct {
	plants []Plant
	rng    *mathrand.Rand
}

// NewForest creates a forest seeded with persisted plants.
func NewForest(plants []Plant, rng *mathrand.Rand) *Forest {
	if rng == nil {
		rng = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	}
	return &Forest{plants: append([]Plant(nil), plants...), rng: rng}
}

// Plant grows a random species and returns it.
func (forest *Forest) Plant(id string, plantedAt time.Time) Plant {
	species := Catalogue[forest.rng.Intn(len(Catalogue))]
	plant := Plant{
		ID:        id,
		Kind:      species.Kind,
		Species:   species.Name,
		PlantedAt: plantedAt,
	}
	forest.plants = append(forest.plants, plant)
	return plant
}

// Clear removes every plant.
func (forest *Forest) Clear() {
	forest.plants = nil
}

// Entries returns a copy of the plants.
func (forest *Forest) Entries() []Plant {
	return append([]Plant{}, forest.plants...)
}

// Len returns the number of plants.
func (forest *Forest) Len() int {
	return len(forest.plants)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a ULID timestamped at now.
func NewID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
