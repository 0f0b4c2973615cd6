package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"question_rotation_service/internal/domain/question"
	"question_rotation_service/internal/domain/region"
	"question_rotation_service/internal/domain/rotation"
	idb "question_rotation_service/internal/infra/database"
)

// fakeStore is an in-memory implementation of the region, question, and
// rotation repositories backing the service tests.
type fakeStore struct {
	mu          sync.Mutex
	regions     map[int64]*region.Region
	questions   map[int64]*question.Question
	eligibility map[int64][]int64 // region id -> question ids
	cycles      []*rotation.Cycle
	assignments []*rotation.Assignment
	nextID      int64

	currentQueries int     // GetCurrentAssignment call count
	onCurrentQuery func()  // invoked inside GetCurrentAssignment, before answering
	beforeCommit   func()  // invoked once at the top of CommitRotation
	failCommit     error   // forces CommitRotation to fail without mutating
	failCurrent    error   // forces GetCurrentAssignment to fail
}

var _ region.Repository = (*fakeStore)(nil)
var _ rotation.Repository = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		regions:     make(map[int64]*region.Region),
		questions:   make(map[int64]*question.Question),
		eligibility: make(map[int64][]int64),
	}
}

func (f *fakeStore) newID() int64 {
	f.nextID++
	return f.nextID
}

// --- region.Repository ---

func (f *fakeStore) Create(ctx context.Context, reg *region.Region) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg.ID = f.newID()
	reg.CreatedAt = time.Now()
	f.regions[reg.ID] = reg
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*region.Region, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regions[id]
	if !ok {
		return nil, idb.ErrRegionNotFound
	}
	return reg, nil
}

func (f *fakeStore) ListAll(ctx context.Context) ([]*region.Region, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	regions := make([]*region.Region, 0, len(f.regions))
	for _, reg := range f.regions {
		regions = append(regions, reg)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })
	return regions, nil
}

// --- question.Repository (method names avoid clashing with region's) ---

func (f *fakeStore) CreateQuestion(ctx context.Context, q *question.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = f.newID()
	q.CreatedAt = time.Now()
	f.questions[q.ID] = q
	return nil
}

func (f *fakeStore) GetQuestionByID(ctx context.Context, id int64) (*question.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, idb.ErrQuestionNotFound
	}
	return q, nil
}

func (f *fakeStore) AddEligibility(ctx context.Context, regionID, questionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, qid := range f.eligibility[regionID] {
		if qid == questionID {
			return idb.ErrDuplicateEligibility
		}
	}
	f.eligibility[regionID] = append(f.eligibility[regionID], questionID)
	return nil
}

func (f *fakeStore) ListEligibleByRegion(ctx context.Context, regionID int64) ([]*question.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool := make([]*question.Question, 0)
	for _, qid := range f.eligibility[regionID] {
		pool = append(pool, f.questions[qid])
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

// --- rotation.Repository ---

func (f *fakeStore) GetActiveCycle(ctx context.Context) (*rotation.Cycle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeCycleLocked()
}

func (f *fakeStore) activeCycleLocked() (*rotation.Cycle, error) {
	for _, c := range f.cycles {
		if c.Active {
			return c, nil
		}
	}
	return nil, idb.ErrNoActiveCycle
}

func (f *fakeStore) CommitRotation(ctx context.Context, previousCycleID int64, newCycle *rotation.Cycle, assignments []*rotation.Assignment) error {
	if f.beforeCommit != nil {
		hook := f.beforeCommit
		f.beforeCommit = nil
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCommit != nil {
		return f.failCommit
	}

	active, err := f.activeCycleLocked()
	if previousCycleID != 0 {
		if err != nil || active.ID != previousCycleID {
			return idb.ErrRotationConflict
		}
		active.Active = false
	} else if err == nil {
		return idb.ErrRotationConflict
	}

	newCycle.ID = f.newID()
	newCycle.Active = true
	newCycle.CreatedAt = time.Now()
	f.cycles = append(f.cycles, newCycle)

	for _, a := range assignments {
		a.ID = f.newID()
		a.CycleID = newCycle.ID
		a.CreatedAt = time.Now()
		f.assignments = append(f.assignments, a)
	}
	return nil
}

func (f *fakeStore) ListAssignedQuestionIDs(ctx context.Context, regionID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Cycles are appended in commit order, which is chronological.
	ids := make([]int64, 0)
	for _, c := range f.cycles {
		for _, a := range f.assignments {
			if a.CycleID == c.ID && a.RegionID == regionID {
				ids = append(ids, a.QuestionID)
			}
		}
	}
	return ids, nil
}

func (f *fakeStore) GetCurrentAssignment(ctx context.Context, regionID int64) (*rotation.CurrentQuestion, error) {
	f.mu.Lock()
	f.currentQueries++
	hook := f.onCurrentQuery
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCurrent != nil {
		return nil, f.failCurrent
	}
	active, err := f.activeCycleLocked()
	if err != nil {
		return nil, idb.ErrAssignmentNotFound
	}
	for _, a := range f.assignments {
		if a.CycleID == active.ID && a.RegionID == regionID {
			return &rotation.CurrentQuestion{
				RegionID:    regionID,
				QuestionID:  a.QuestionID,
				Content:     f.questions[a.QuestionID].Content,
				CycleID:     active.ID,
				CycleEndsAt: active.EndTime,
			}, nil
		}
	}
	return nil, idb.ErrAssignmentNotFound
}

func (f *fakeStore) currentQueryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentQueries
}

// questionRepoAdapter exposes the fakeStore's question methods under the
// question.Repository names (Create/GetByID collide with the region ones).
type questionRepoAdapter struct{ store *fakeStore }

var _ question.Repository = questionRepoAdapter{}

func (a questionRepoAdapter) Create(ctx context.Context, q *question.Question) error {
	return a.store.CreateQuestion(ctx, q)
}

func (a questionRepoAdapter) GetByID(ctx context.Context, id int64) (*question.Question, error) {
	return a.store.GetQuestionByID(ctx, id)
}

func (a questionRepoAdapter) AddEligibility(ctx context.Context, regionID, questionID int64) error {
	return a.store.AddEligibility(ctx, regionID, questionID)
}

func (a questionRepoAdapter) ListEligibleByRegion(ctx context.Context, regionID int64) ([]*question.Question, error) {
	return a.store.ListEligibleByRegion(ctx, regionID)
}

// fakeCache is an in-memory rotation.Cache recording TTLs and honoring
// expiry, with injectable read/write failures.
type fakeCache struct {
	mu       sync.Mutex
	entries  map[int64]fakeCacheEntry
	failGet  error
	failSet  error
	setCalls int
}

type fakeCacheEntry struct {
	current   *rotation.CurrentQuestion
	ttl       time.Duration
	expiresAt time.Time
}

var _ rotation.Cache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[int64]fakeCacheEntry)}
}

func (c *fakeCache) GetCurrent(ctx context.Context, regionID int64) (*rotation.CurrentQuestion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return nil, c.failGet
	}
	entry, ok := c.entries[regionID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, rotation.ErrCacheMiss
	}
	return entry.current, nil
}

func (c *fakeCache) SetCurrent(ctx context.Context, current *rotation.CurrentQuestion, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++
	if c.failSet != nil {
		return c.failSet
	}
	c.entries[current.RegionID] = fakeCacheEntry{
		current:   current,
		ttl:       ttl,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *fakeCache) SetCurrentBulk(ctx context.Context, entries []*rotation.CurrentQuestion, ttl time.Duration) error {
	var firstErr error
	for _, cur := range entries {
		if err := c.SetCurrent(ctx, cur, ttl); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *fakeCache) lastTTL(regionID int64) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[regionID]
	return entry.ttl, ok
}

func (c *fakeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// fakeDurations is a canned config.DurationProvider.
type fakeDurations struct {
	d   time.Duration
	err error
}

func (p fakeDurations) GetDuration(key string) (time.Duration, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.d, nil
}
