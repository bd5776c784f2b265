package registry

import "github.com/mcncl/objgen/internal/models"

// Interface is a bit set of the collection interfaces a container type implements.
type Interface uint16

const (
	IfaceCollection Interface = 1 << iota
	IfaceList
	IfaceSet
	IfaceSortedSet
	IfaceNavigableSet
	IfaceLinkedSet
	IfaceQueue
	IfaceDeque
	IfaceBlockingQueue
)

var interfaceNames = map[string]Interface{
	"Collection":    IfaceCollection,
	"List":          IfaceList,
	"Set":           IfaceSet,
	"SortedSet":     IfaceSortedSet,
	"NavigableSet":  IfaceNavigableSet,
	"LinkedSet":     IfaceLinkedSet,
	"Queue":         IfaceQueue,
	"Deque":         IfaceDeque,
	"BlockingQueue": IfaceBlockingQueue,
	"BlockingDeque": IfaceBlockingQueue | IfaceDeque,
}

// ParseInterfaces folds interface names into a set; unknown names are reported.
func ParseInterfaces(names []string) (Interface, []string) {
	var set Interface
	var unknown []string
	for _, n := range names {
		if i, ok := interfaceNames[n]; ok {
			set |= i
		} else {
			unknown = append(unknown, n)
		}
	}
	return set, unknown
}

// Has reports whether every bit of other is set.
func (i Interface) Has(other Interface) bool { return i&other == other }

// Any reports whether at least one bit of other is set.
func (i Interface) Any(other Interface) bool { return i&other != 0 }

type containerInfo struct {
	ifaces   Interface
	concrete bool
}

const (
	list      = IfaceCollection | IfaceList
	set       = IfaceCollection | IfaceSet
	sortedSet = set | IfaceSortedSet | IfaceNavigableSet
	queue     = IfaceCollection | IfaceQueue
	deque     = queue | IfaceDeque
	blocking  = queue | IfaceBlockingQueue
)

var knownContainers = map[string]containerInfo{
	"Collection": {ifaces: IfaceCollection},

	"List":                 {ifaces: list},
	"ArrayList":            {ifaces: list, concrete: true},
	"Vector":               {ifaces: list, concrete: true},
	"CopyOnWriteArrayList": {ifaces: list, concrete: true},
	"LinkedList":           {ifaces: list | deque, concrete: true},

	"Set":                   {ifaces: set},
	"HashSet":               {ifaces: set, concrete: true},
	"SortedSet":             {ifaces: set | IfaceSortedSet},
	"NavigableSet":          {ifaces: sortedSet},
	"TreeSet":               {ifaces: sortedSet, concrete: true},
	"ConcurrentSkipListSet": {ifaces: sortedSet, concrete: true},
	"SequencedSet":          {ifaces: set | IfaceLinkedSet},
	"LinkedHashSet":         {ifaces: set | IfaceLinkedSet, concrete: true},

	"Queue":                 {ifaces: queue},
	"AbstractQueue":         {ifaces: queue},
	"PriorityQueue":         {ifaces: queue, concrete: true},
	"ConcurrentLinkedQueue": {ifaces: queue, concrete: true},

	"Deque":                 {ifaces: deque},
	"ArrayDeque":            {ifaces: deque, concrete: true},
	"ConcurrentLinkedDeque": {ifaces: deque, concrete: true},

	"BlockingQueue":         {ifaces: blocking},
	"LinkedBlockingQueue":   {ifaces: blocking, concrete: true},
	"PriorityBlockingQueue": {ifaces: blocking, concrete: true},
	"LinkedTransferQueue":   {ifaces: blocking, concrete: true},
	"BlockingDeque":         {ifaces: blocking | IfaceDeque},
	"LinkedBlockingDeque":   {ifaces: blocking | IfaceDeque, concrete: true},
}

// IsKnownContainer reports whether name is a recognized container type.
func IsKnownContainer(name string) bool {
	_, ok := knownContainers[name]
	return ok
}

// IsConcreteContainer reports whether name is a recognized implementation
// type that can be instantiated directly.
func IsConcreteContainer(name string) bool {
	return knownContainers[name].concrete
}

// ContainerInterfaces returns the interface set of a known container.
func ContainerInterfaces(name string) (Interface, bool) {
	info, ok := knownContainers[name]
	return info.ifaces, ok
}

// classification rules in precedence order; the first match wins.
var classificationRules = []struct {
	match func(Interface) bool
	kind  models.CollectionKind
}{
	{func(i Interface) bool { return i.Has(IfaceDeque) }, models.Deque},
	{func(i Interface) bool { return i.Has(IfaceQueue) && !i.Has(IfaceBlockingQueue) }, models.Queue},
	{func(i Interface) bool { return i.Has(IfaceBlockingQueue) }, models.BlockingQueue},
	{func(i Interface) bool { return i.Any(IfaceSortedSet | IfaceNavigableSet) }, models.SortedSet},
	{func(i Interface) bool { return i.Has(IfaceLinkedSet) }, models.LinkedSet},
	{func(i Interface) bool { return i.Has(IfaceSet) }, models.Set},
	{func(i Interface) bool { return i.Has(IfaceList) }, models.List},
	{func(i Interface) bool { return i.Has(IfaceCollection) }, models.GenericCollection},
}

// Classify picks the collection kind for a container implementing ifaces:
// Deque > strict Queue > BlockingQueue > SortedSet/NavigableSet > LinkedSet >
// Set > List > Collection. The bool is false when nothing matched.
func Classify(ifaces Interface) (models.CollectionKind, bool) {
	for _, rule := range classificationRules {
		if rule.match(ifaces) {
			return rule.kind, true
		}
	}
	return 0, false
}
