// Package pkgcache implements the open-addressed package hash table
// described by original_source/src/pkgcache.c (_alpm_pkgcache_t /
// pkgcache.c in the pacman/libalpm tree): linear probing with stride 1,
// bucket counts drawn from a fixed ascending prime table, and a backward
// shift on removal so that find() keeps working without tombstones.
//
// Ownership is restructured from the original's raw-pointer
// buckets-and-list to a single owning slice: both the bucket array and the
// iteration list store indices into that slice, so replace() is a remove
// followed by an add and remove() frees a slot onto a reusable free list
// instead of juggling aliased pointers.
package pkgcache

import "github.com/repogen/repose/internal/pkgmeta"

// primeList is the fixed ascending prime table buckets are drawn from.
var primeList = []uint64{
	11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47,
	53, 59, 61, 67, 71, 73, 79, 83, 89, 97, 103,
	109, 113, 127, 137, 139, 149, 157, 167, 179, 193,
	199, 211, 227, 241, 257, 277, 293, 313, 337, 359,
	383, 409, 439, 467, 503, 541, 577, 619, 661, 709,
	761, 823, 887, 953, 1031, 1109, 1193, 1289, 1381,
	1493, 1613, 1741, 1879, 2029, 2179, 2357, 2549,
	2753, 2971, 3209, 3469, 3739, 4027, 4349, 4703,
	5087, 5503, 5953, 6427, 6949, 7517, 8123, 8783,
	9497, 10273, 11113, 12011, 12983, 14033, 15173,
	16411, 17749, 19183, 20753, 22447, 24281, 26267,
	28411, 30727, 33223, 35933, 38873, 42043, 45481,
	49201, 53201, 57557, 62233, 67307, 72817, 78779,
	85229, 92203, 99733, 107897, 116731, 126271, 136607,
	147793, 159871, 172933, 187091, 202409, 218971, 236897,
	256279, 277261, 299951, 324503, 351061, 379787, 410857,
	444487, 480881, 520241, 562841, 608903, 658753, 712697,
	771049, 834181, 902483, 976369,
}

const (
	stride          = 1
	maxHashLoad     = 0.68
	initialHashLoad = 0.58
)

// free is a sentinel slot index meaning "no entry" in both the bucket
// array and the node's prev/next links.
const free = ^uint32(0)

// node is one entry of the doubly-linked iteration list, threaded through
// indices into Cache.nodes rather than pointers.
type node struct {
	pkg        *pkgmeta.Package
	prev, next uint32
	inUse      bool
}

// Cache is the open-addressed, name-keyed package hash table plus its
// insertion- or name-ordered iteration list.
type Cache struct {
	buckets []uint32 // slot -> node index, or `free`
	nodes   []node   // arena of entries; free slots are recycled via freeList
	freeList []uint32

	head, tail uint32 // list head/tail node indices, or `free`

	entries uint32
	limit   uint32
}

// New allocates a cache sized for at least hint entries at the initial
// load factor (pkgcache_create in the original).
func New(hint int) *Cache {
	size := uint64(float64(hint)/initialHashLoad) + 1
	buckets := primeList[len(primeList)-1]
	for _, p := range primeList {
		if p > size {
			buckets = p
			break
		}
	}

	c := &Cache{
		buckets: make([]uint32, buckets),
	}
	for i := range c.buckets {
		c.buckets[i] = free
	}
	c.head, c.tail = free, free
	c.limit = uint32(float64(buckets) * maxHashLoad)
	return c
}

// Len returns the number of packages currently stored.
func (c *Cache) Len() int {
	return int(c.entries)
}

func (c *Cache) hashPosition(hash uint64) uint32 {
	pos := uint32(hash % uint64(len(c.buckets)))
	for c.buckets[pos] != free {
		pos = (pos + stride) % uint32(len(c.buckets))
	}
	return pos
}

// Find returns the package named name, or nil if absent. Probing starts at
// sdbm(name) mod B and advances by stride until an empty bucket is hit.
func (c *Cache) Find(name string) *pkgmeta.Package {
	if name == "" || len(c.buckets) == 0 {
		return nil
	}
	hash := pkgmeta.Sdbm(name)
	pos := uint32(hash % uint64(len(c.buckets)))

	for c.buckets[pos] != free {
		n := &c.nodes[c.buckets[pos]]
		if n.pkg.NameHash == hash && n.pkg.Name == name {
			return n.pkg
		}
		pos = (pos + stride) % uint32(len(c.buckets))
	}
	return nil
}

// List returns the packages in the cache's current iteration order
// (insertion order, or name-sorted order if every Add call used
// AddSorted).
func (c *Cache) List() []*pkgmeta.Package {
	out := make([]*pkgmeta.Package, 0, c.entries)
	for i := c.head; i != free; i = c.nodes[i].next {
		out = append(out, c.nodes[i].pkg)
	}
	return out
}

func (c *Cache) allocNode(pkg *pkgmeta.Package) uint32 {
	if n := len(c.freeList); n > 0 {
		idx := c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
		c.nodes[idx] = node{pkg: pkg, inUse: true}
		return idx
	}
	c.nodes = append(c.nodes, node{pkg: pkg, inUse: true})
	return uint32(len(c.nodes) - 1)
}

func (c *Cache) appendToList(idx uint32) {
	c.nodes[idx].prev, c.nodes[idx].next = c.tail, free
	if c.tail != free {
		c.nodes[c.tail].next = idx
	} else {
		c.head = idx
	}
	c.tail = idx
}

func (c *Cache) insertSorted(idx uint32) {
	name := c.nodes[idx].pkg.Name
	for i := c.head; i != free; i = c.nodes[i].next {
		if c.nodes[i].pkg.Name > name {
			c.linkBefore(idx, i)
			return
		}
	}
	c.appendToList(idx)
}

func (c *Cache) linkBefore(idx, before uint32) {
	prev := c.nodes[before].prev
	c.nodes[idx].prev = prev
	c.nodes[idx].next = before
	c.nodes[before].prev = idx
	if prev != free {
		c.nodes[prev].next = idx
	} else {
		c.head = idx
	}
}

func (c *Cache) unlinkFromList(idx uint32) {
	n := &c.nodes[idx]
	if n.prev != free {
		c.nodes[n.prev].next = n.next
	} else {
		c.head = n.next
	}
	if n.next != free {
		c.nodes[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}
}

func (c *Cache) addPkg(pkg *pkgmeta.Package, sorted bool) {
	if pkg == nil {
		return
	}
	if c.entries >= c.limit {
		c.rehash()
	}

	pos := c.hashPosition(pkg.NameHash)
	idx := c.allocNode(pkg)
	c.buckets[pos] = idx

	if sorted {
		c.insertSorted(idx)
	} else {
		c.appendToList(idx)
	}
	c.entries++
}

// Add inserts pkg at the tail of the iteration list (insertion order).
func (c *Cache) Add(pkg *pkgmeta.Package) {
	c.addPkg(pkg, false)
}

// AddSorted inserts pkg into the iteration list at its name-sorted
// position.
func (c *Cache) AddSorted(pkg *pkgmeta.Package) {
	c.addPkg(pkg, true)
}

// Replace removes old and adds new, preserving new's own insertion
// behavior (Add, i.e. appended at the tail, matching
// pkgcache_replace/_alpm_pkgcache_replace in the original, which is
// always remove+add, never add_sorted).
func (c *Cache) Replace(newPkg, old *pkgmeta.Package) {
	c.Remove(old)
	c.Add(newPkg)
}

// moveOneEntry walks backwards from end to start looking for an entry that
// now hashes to start; if found, it is moved into start and (end) is
// returned as the slot that needs to be reconsidered next. This is the
// Robin-Hood-style backward-shift repair from pkgcache.c's move_one_entry.
func (c *Cache) moveOneEntry(start, end uint32) uint32 {
	b := uint32(len(c.buckets))
	for end != start {
		idx := c.buckets[end]
		pkg := c.nodes[idx].pkg
		newPos := c.hashPosition(pkg.NameHash)

		if newPos == start {
			c.buckets[start] = idx
			c.buckets[end] = free
			break
		}

		end = (b + end - stride) % b
	}
	return end
}

// Remove deletes pkg from the cache (by name+hash identity) and repairs
// the probe chain so that every surviving entry remains reachable from its
// own ideal bucket. Removing an absent package is a no-op.
func (c *Cache) Remove(pkg *pkgmeta.Package) {
	if pkg == nil || len(c.buckets) == 0 {
		return
	}
	b := uint32(len(c.buckets))
	pos := uint32(pkg.NameHash % uint64(b))

	for c.buckets[pos] != free {
		idx := c.buckets[pos]
		n := &c.nodes[idx]

		if n.pkg.NameHash == pkg.NameHash && n.pkg.Name == pkg.Name {
			c.unlinkFromList(idx)
			c.buckets[pos] = free
			c.freeList = append(c.freeList, idx)
			n.pkg = nil
			n.inUse = false
			c.entries--

			stop := (pos + stride) % b
			for c.buckets[stop] != free && stop != pos {
				stop = (stop + stride) % b
			}
			stop = (b + stop - stride) % b

			for {
				prev := c.moveOneEntry(pos, stop)
				if prev == pos {
					break
				}
				pos = prev
			}
			return
		}

		pos = (pos + stride) % b
	}
}

// rehash grows the table following the original's size-banded policy and
// reinserts every entry at its new probe position, preserving the
// iteration list wholesale (its head/tail/links are untouched).
func (c *Cache) rehash() {
	old := uint64(len(c.buckets))
	var newSize uint64
	switch {
	case old < 500:
		newSize = old * 2
	case old < 2000:
		newSize = old * 3 / 2
	case old < 5000:
		newSize = old * 4 / 3
	default:
		newSize = old + 1
	}

	buckets := primeList[len(primeList)-1]
	for _, p := range primeList {
		if p > newSize {
			buckets = p
			break
		}
	}

	newBuckets := make([]uint32, buckets)
	for i := range newBuckets {
		newBuckets[i] = free
	}

	c.buckets = newBuckets
	c.limit = uint32(float64(buckets) * maxHashLoad)

	for i := c.head; i != free; i = c.nodes[i].next {
		pos := c.hashPosition(c.nodes[i].pkg.NameHash)
		c.buckets[pos] = i
	}
}
