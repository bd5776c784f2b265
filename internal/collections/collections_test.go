package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcncl/objgen/internal/models"
)

func TestStrategyForDefaults(t *testing.T) {
	tests := []struct {
		kind models.CollectionKind
		want Strategy
	}{
		{models.List, Strategy{"ArrayList", Add, "List"}},
		{models.Set, Strategy{"HashSet", Add, "Set"}},
		{models.SortedSet, Strategy{"TreeSet", Add, "SortedSet"}},
		{models.LinkedSet, Strategy{"LinkedHashSet", Add, "LinkedHashSet"}},
		{models.Queue, Strategy{"LinkedList", Offer, "Queue"}},
		{models.Deque, Strategy{"ArrayDeque", Add, "Deque"}},
		{models.BlockingQueue, Strategy{"LinkedBlockingQueue", Offer, "BlockingQueue"}},
		{models.GenericCollection, Strategy{"ArrayList", Add, "Collection"}},
		{models.Array, Strategy{Insertion: Index}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, StrategyFor(tt.kind, ""))
		})
	}
}

func TestStrategyForUnknownKind(t *testing.T) {
	got := StrategyFor(models.CollectionKind(99), "Whatever")
	assert.Equal(t, Strategy{"ArrayList", Add, "List"}, got)
}

func TestStrategyForDeclaredName(t *testing.T) {
	tests := []struct {
		name     string
		kind     models.CollectionKind
		declared string
		want     Strategy
	}{
		{"concrete list", models.List, "ArrayList", Strategy{"ArrayList", Add, "ArrayList"}},
		{"linked list is a deque", models.Deque, "LinkedList", Strategy{"LinkedList", Add, "LinkedList"}},
		{"priority queue offers", models.Queue, "PriorityQueue", Strategy{"PriorityQueue", Offer, "PriorityQueue"}},
		{"navigable set keeps its name", models.SortedSet, "NavigableSet", Strategy{"TreeSet", Add, "NavigableSet"}},
		{"blocking deque", models.Deque, "BlockingDeque", Strategy{"LinkedBlockingDeque", Add, "BlockingDeque"}},
		{"unknown name ignored", models.Set, "MySet", Strategy{"HashSet", Add, "Set"}},
		{"array ignores name", models.Array, "List", Strategy{Insertion: Index}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrategyFor(tt.kind, tt.declared))
		})
	}
}

func TestQueueKindsOffer(t *testing.T) {
	for _, kind := range []models.CollectionKind{models.Queue, models.BlockingQueue} {
		assert.Equal(t, Offer, StrategyFor(kind, "").Insertion, kind.String())
	}
	for _, kind := range []models.CollectionKind{models.List, models.Set, models.Deque, models.GenericCollection} {
		assert.Equal(t, Add, StrategyFor(kind, "").Insertion, kind.String())
	}
}

func TestAcceptsNull(t *testing.T) {
	assert.True(t, StrategyFor(models.List, "").AcceptsNull())
	assert.True(t, StrategyFor(models.Set, "").AcceptsNull())
	assert.True(t, StrategyFor(models.Queue, "").AcceptsNull())
	assert.True(t, StrategyFor(models.Array, "").AcceptsNull())
	assert.False(t, StrategyFor(models.Deque, "").AcceptsNull())
	assert.False(t, StrategyFor(models.SortedSet, "").AcceptsNull())
	assert.False(t, StrategyFor(models.Queue, "PriorityQueue").AcceptsNull())
	assert.True(t, StrategyFor(models.Deque, "LinkedList").AcceptsNull())
}
