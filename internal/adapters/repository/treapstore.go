package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/pkg/metrics"
)

// Treap-based, in-memory RosterStore.
//
// Ordering: belt.CompareByRankDescending (rank desc, stripes desc, name asc),
// then member id asc so the order is total. In-order traversal yields the
// roster from highest to lowest grade.

// key is the ordering tuple of a member. It is copied into the node so the
// node can be found again after the member record changes.
type key struct {
	rank    belt.Rank
	stripes int
	name    string
	id      string
}

func (k key) BeltRank() belt.Rank { return k.rank }
func (k key) StripeCount() int    { return k.stripes }
func (k key) SortName() string    { return k.name }

func keyOf(m model.Member) key {
	return key{rank: m.Grade.Rank, stripes: m.Grade.Stripes, name: m.Name, id: m.ID}
}

func compareKeys(a, b key) int {
	if c := belt.CompareByRankDescending(a, b); c != 0 {
		return c
	}
	return strings.Compare(a.id, b.id)
}

// group is a dense standing bucket.
type group struct {
	rank    belt.Rank
	stripes int
}

func (g group) above(o group) bool {
	if g.rank != o.rank {
		return g.rank > o.rank
	}
	return g.stripes > o.stripes
}

// treap node
type node struct {
	k     key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k key, prio uint64) *node {
	if n == nil {
		return &node{k: k, prio: prio, size: 1}
	}
	if compareKeys(k, n.k) < 0 {
		n.left = insert(n.left, k, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	switch c := compareKeys(k, n.k); {
	case c == 0:
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	case c < 0:
		n.left = deleteNode(n.left, k)
	default:
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// place returns the 1-based in-order index of k, or 0 if absent.
func place(n *node, k key) int {
	before := 0
	for n != nil {
		switch c := compareKeys(k, n.k); {
		case c == 0:
			return before + nsize(n.left) + 1
		case c < 0:
			n = n.left
		default:
			before += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// walk visits nodes in order until fn returns false.
func walk(n *node, fn func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, fn) {
		return false
	}
	if !fn(n) {
		return false
	}
	return walk(n.right, fn)
}

// TreapStore is the in-memory RosterStore.
type TreapStore struct {
	mu     sync.RWMutex
	root   *node
	byID   map[string]model.Member
	groups map[group]int
	rng    *rand.Rand
	seed   uint64
	now    func() time.Time
}

// NewTreapStore constructs an empty roster store.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:   make(map[string]model.Member),
		groups: make(map[group]int),
		seed:   uint64(time.Now().UnixNano()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	return s
}

func groupOf(m model.Member) group {
	return group{rank: m.Grade.Rank, stripes: m.Grade.Stripes}
}

// denseLocked counts the occupied groups above g. Caller holds the lock.
func (s *TreapStore) denseLocked(g group) int {
	pos := 1
	for other, n := range s.groups {
		if n > 0 && other.above(g) {
			pos++
		}
	}
	return pos
}

func (s *TreapStore) removeLocked(old model.Member) {
	s.root = deleteNode(s.root, keyOf(old))
	g := groupOf(old)
	if s.groups[g]--; s.groups[g] <= 0 {
		delete(s.groups, g)
	}
}

func (s *TreapStore) insertLocked(m model.Member) {
	s.byID[m.ID] = m
	s.root = insert(s.root, keyOf(m), s.rng.Uint64())
	s.groups[groupOf(m)]++
}

func (s *TreapStore) rankCountLocked(r belt.Rank) int {
	total := 0
	for g, n := range s.groups {
		if g.rank == r {
			total += n
		}
	}
	return total
}

// Upsert implements RosterStore.Upsert in O(log n) expected time.
func (s *TreapStore) Upsert(_ context.Context, m model.Member) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if m.ID == "" {
		return ErrMissingID
	}
	if err := m.Grade.Validate(s.now()); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_grade")
		return fmt.Errorf("%w: member %s: %w", ErrInvalidGrade, m.ID, err)
	}

	s.mu.Lock()
	old, existed := s.byID[m.ID]
	if existed {
		s.removeLocked(old)
	}
	s.insertLocked(m)
	count := len(s.byID)
	newRankCount := s.rankCountLocked(m.Grade.Rank)
	oldRankCount := s.rankCountLocked(old.Grade.Rank)
	s.mu.Unlock()

	metrics.UpdateRosterMembers(count)
	metrics.UpdateMembersByRank(m.Grade.Rank.String(), newRankCount)
	if existed && old.Grade.Rank != m.Grade.Rank {
		metrics.UpdateMembersByRank(old.Grade.Rank.String(), oldRankCount)
	}
	return nil
}

// Promote implements RosterStore.Promote.
func (s *TreapStore) Promote(_ context.Context, id string, g belt.Grade) (belt.Grade, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := g.Validate(s.now()); err != nil {
		return belt.Grade{}, fmt.Errorf("%w: %w", ErrInvalidGrade, err)
	}

	s.mu.Lock()
	m, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return belt.Grade{}, ErrNotFound
	}
	prev := m.Grade
	if !g.Outranks(prev) {
		s.mu.Unlock()
		return prev, fmt.Errorf("%w: %s/%d is not above %s/%d",
			ErrNotHigher, g.Rank, g.Stripes, prev.Rank, prev.Stripes)
	}
	s.removeLocked(m)
	m.Grade = g
	s.insertLocked(m)
	newRankCount := s.rankCountLocked(g.Rank)
	oldRankCount := s.rankCountLocked(prev.Rank)
	s.mu.Unlock()

	metrics.UpdateMembersByRank(g.Rank.String(), newRankCount)
	if prev.Rank != g.Rank {
		metrics.UpdateMembersByRank(prev.Rank.String(), oldRankCount)
	}
	return prev, nil
}

// Get implements RosterStore.Get in O(log n) expected time.
func (s *TreapStore) Get(_ context.Context, id string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{
		Position: s.denseLocked(groupOf(m)),
		Place:    place(s.root, keyOf(m)),
		Member:   m,
	}, nil
}

// Position implements RosterStore.Position.
func (s *TreapStore) Position(ctx context.Context, id string) (int, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return e.Position, nil
}

// TopN implements RosterStore.TopN.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	pos := 0
	var last group
	walk(s.root, func(nd *node) bool {
		g := group{rank: nd.k.rank, stripes: nd.k.stripes}
		if pos == 0 || g != last {
			pos++
			last = g
		}
		out = append(out, Entry{Position: pos, Place: len(out) + 1, Member: s.byID[nd.k.id]})
		return len(out) < n
	})
	return out, nil
}

// Members implements RosterStore.Members.
func (s *TreapStore) Members(_ context.Context) []model.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Member, 0, len(s.byID))
	walk(s.root, func(nd *node) bool {
		out = append(out, s.byID[nd.k.id])
		return true
	})
	return out
}

// Count implements RosterStore.Count.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
