// Package collections maps collection kinds to the container type emitted for
// them and the statement used to insert elements.
package collections

import (
	"github.com/mcncl/objgen/internal/models"
	"github.com/mcncl/objgen/internal/registry"
)

// Insertion is the statement form used to put one element into a container.
type Insertion int

const (
	// Add emits id.add(v);
	Add Insertion = iota
	// Offer emits id.offer(v);
	Offer
	// Index emits id[i] = v;
	Index
)

func (i Insertion) String() string {
	switch i {
	case Offer:
		return "offer"
	case Index:
		return "index"
	default:
		return "add"
	}
}

// Strategy says how a collection field is declared, allocated and filled.
type Strategy struct {
	Implementation string
	Insertion      Insertion
	DeclaredType   string
}

var defaults = map[models.CollectionKind]Strategy{
	models.List:              {Implementation: "ArrayList", Insertion: Add, DeclaredType: "List"},
	models.Set:               {Implementation: "HashSet", Insertion: Add, DeclaredType: "Set"},
	models.SortedSet:         {Implementation: "TreeSet", Insertion: Add, DeclaredType: "SortedSet"},
	models.LinkedSet:         {Implementation: "LinkedHashSet", Insertion: Add, DeclaredType: "LinkedHashSet"},
	models.Queue:             {Implementation: "LinkedList", Insertion: Offer, DeclaredType: "Queue"},
	models.Deque:             {Implementation: "ArrayDeque", Insertion: Add, DeclaredType: "Deque"},
	models.BlockingQueue:     {Implementation: "LinkedBlockingQueue", Insertion: Offer, DeclaredType: "BlockingQueue"},
	models.GenericCollection: {Implementation: "ArrayList", Insertion: Add, DeclaredType: "Collection"},
	models.Array:             {Insertion: Index},
}

var fallback = defaults[models.List]

// implementations for declared interface names whose kind default would not
// be assignable to them.
var implementations = map[string]string{
	"BlockingDeque": "LinkedBlockingDeque",
	"AbstractQueue": "PriorityQueue",
	"SequencedSet":  "LinkedHashSet",
}

// rejectsNull lists implementations that throw on a null element.
var rejectsNull = map[string]bool{
	"TreeSet":               true,
	"ConcurrentSkipListSet": true,
	"ArrayDeque":            true,
	"ConcurrentLinkedDeque": true,
	"PriorityQueue":         true,
	"ConcurrentLinkedQueue": true,
	"LinkedBlockingQueue":   true,
	"PriorityBlockingQueue": true,
	"LinkedTransferQueue":   true,
	"LinkedBlockingDeque":   true,
}

// AcceptsNull reports whether a null element may be inserted.
func (s Strategy) AcceptsNull() bool {
	return !rejectsNull[s.Implementation]
}

// StrategyFor returns the strategy for kind. declaredName is the container
// name written on the field, if any: it is kept as the declared type so the
// emitted code uses the field's own most specific type, and when it names a
// concrete container it is also the implementation.
func StrategyFor(kind models.CollectionKind, declaredName string) Strategy {
	s, ok := defaults[kind]
	if !ok {
		return fallback
	}
	if kind == models.Array || declaredName == "" {
		return s
	}
	if registry.IsConcreteContainer(declaredName) {
		s.Implementation = declaredName
		s.DeclaredType = declaredName
		return s
	}
	if registry.IsKnownContainer(declaredName) {
		s.DeclaredType = declaredName
		if impl, ok := implementations[declaredName]; ok {
			s.Implementation = impl
		}
	}
	return s
}
