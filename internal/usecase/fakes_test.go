package usecase

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/mapmarket/reaction-service/internal/platform/metrics"
)

func newTestLogger() *logger.Logger {
	return logger.NewLogger()
}

func newTestMetrics() *metrics.Manager {
	return metrics.NewManager("test")
}

func counterKey(collection, docID, field string) string {
	return collection + "/" + docID + "/" + field
}

// fakeCounterStore accumulates deltas in memory. Guarded by a mutex so the
// concurrency tests can hammer it from many goroutines.
type fakeCounterStore struct {
	mu       sync.Mutex
	counters map[string]int64
	reviews  map[string]domain.ReviewAggregate
	averages map[string]float64
	failWith error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counters: make(map[string]int64),
		reviews:  make(map[string]domain.ReviewAggregate),
		averages: make(map[string]float64),
	}
}

func (s *fakeCounterStore) ApplyDeltas(ctx context.Context, deltas []domain.CounterDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	for _, d := range deltas {
		s.counters[counterKey(d.Collection, d.DocID, d.Field)] += d.Delta
	}
	return nil
}

func (s *fakeCounterStore) ApplyReview(ctx context.Context, collection, docID string, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	key := collection + "/" + docID
	agg := s.reviews[key]
	agg.Count++
	agg.Sum += rating
	s.reviews[key] = agg
	s.averages[key] = agg.Sum / float64(agg.Count)
	return nil
}

func (s *fakeCounterStore) value(collection, docID, field string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[counterKey(collection, docID, field)]
}

type fakeListingRepo struct {
	listings   map[string]*domain.Listing
	deleted    []string
	activeURLs []string
	bySeller   map[string]int64
	findErr    error
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		listings: make(map[string]*domain.Listing),
		bySeller: make(map[string]int64),
	}
}

func (r *fakeListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if l, ok := r.listings[id]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeListingRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.listings[id]; !ok {
		r.deleted = append(r.deleted, id)
		return domain.ErrNotFound
	}
	delete(r.listings, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeListingRepo) ActiveImageURLs(ctx context.Context) ([]string, error) {
	return r.activeURLs, nil
}

func (r *fakeListingRepo) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	return r.bySeller[sellerID], nil
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	order   []string
	stale   []*domain.User
	deleted []string
	delErr  map[string]error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:  make(map[string]*domain.User),
		delErr: make(map[string]error),
	}
	for _, u := range users {
		r.add(u)
	}
	return r
}

func (r *fakeUserRepo) add(u *domain.User) {
	r.users[u.UID] = u
	r.order = append(r.order, u.UID)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.UID]; ok {
		return nil
	}
	r.add(user)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, uid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[uid]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.order))
	for _, uid := range r.order {
		if u, ok := r.users[uid]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindLastSeenBefore(ctx context.Context, cutoff time.Time) ([]*domain.User, error) {
	return r.stale, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.delErr[uid]; err != nil {
		return err
	}
	delete(r.users, uid)
	r.deleted = append(r.deleted, uid)
	return nil
}

type fakeAlertRepo struct {
	byOwner map[string][]*domain.Alert
}

func (r *fakeAlertRepo) ActiveByOwner(ctx context.Context, ownerID string) ([]*domain.Alert, error) {
	return r.byOwner[ownerID], nil
}

type fakeChatRepo struct {
	chats   map[string]*domain.Chat
	lastSet map[string]domain.LastMessage
}

func newFakeChatRepo(chats ...*domain.Chat) *fakeChatRepo {
	r := &fakeChatRepo{
		chats:   make(map[string]*domain.Chat),
		lastSet: make(map[string]domain.LastMessage),
	}
	for _, c := range chats {
		r.chats[c.ID] = c
	}
	return r
}

func (r *fakeChatRepo) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	if c, ok := r.chats[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeChatRepo) SetLastMessage(ctx context.Context, chatID string, last domain.LastMessage) error {
	if _, ok := r.chats[chatID]; !ok {
		return domain.ErrNotFound
	}
	r.lastSet[chatID] = last
	return nil
}

type sentPush struct {
	tokens []string
	msg    domain.PushMessage
}

type fakePushSender struct {
	sent []sentPush
	// acceptAll accepts every token; otherwise accept caps the count to
	// simulate transport-side partial failure.
	acceptAll bool
	accept    int
	err       error
}

func (s *fakePushSender) SendMulticast(ctx context.Context, tokens []string, msg domain.PushMessage) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.sent = append(s.sent, sentPush{tokens: tokens, msg: msg})
	if s.acceptAll {
		return len(tokens), nil
	}
	return s.accept, nil
}

type sentEmail struct {
	to, subject, body string
}

type fakeEmailSender struct {
	sent []sentEmail
	err  error
}

func (s *fakeEmailSender) Send(to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

type fakeSearchIndex struct {
	upserts []*domain.Listing
	removed []string
	err     error
}

func (i *fakeSearchIndex) Upsert(ctx context.Context, listing *domain.Listing) error {
	if i.err != nil {
		return i.err
	}
	i.upserts = append(i.upserts, listing)
	return nil
}

func (i *fakeSearchIndex) Remove(ctx context.Context, listingID string) error {
	if i.err != nil {
		return i.err
	}
	i.removed = append(i.removed, listingID)
	return nil
}

type fakeListingCache struct {
	invalidated []string
}

func (c *fakeListingCache) Invalidate(ctx context.Context, listingID string) error {
	c.invalidated = append(c.invalidated, listingID)
	return nil
}

type uploadedObject struct {
	key         string
	contentType string
	metadata    map[string]string
}

// fakeObjectStore keeps object payloads in memory and materializes them onto
// disk for Download, since the pipeline hands file paths to the resizer.
type fakeObjectStore struct {
	objects         map[string][]byte
	uploads         []uploadedObject
	removed         []string
	removedPrefixes []string
	downloadErr     error
	uploadErr       error
	removeErr       error
	baseURL         string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		baseURL: "https://cdn.test/media/",
	}
}

func (s *fakeObjectStore) Download(ctx context.Context, key, destPath string) error {
	if s.downloadErr != nil {
		return s.downloadErr
	}
	data, ok := s.objects[key]
	if !ok {
		return fmt.Errorf("object %s not found", key)
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (s *fakeObjectStore) Upload(ctx context.Context, key, srcPath, contentType string, metadata map[string]string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	s.objects[key] = data
	s.uploads = append(s.uploads, uploadedObject{key: key, contentType: contentType, metadata: metadata})
	return nil
}

func (s *fakeObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *fakeObjectStore) Remove(ctx context.Context, key string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *fakeObjectStore) RemovePrefix(ctx context.Context, prefix string) error {
	s.removedPrefixes = append(s.removedPrefixes, prefix)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			delete(s.objects, k)
		}
	}
	return nil
}

func (s *fakeObjectStore) KeyForURL(url string) (string, bool) {
	if strings.HasPrefix(url, s.baseURL) {
		return strings.TrimPrefix(url, s.baseURL), true
	}
	return "", false
}

func (s *fakeObjectStore) urlFor(key string) string {
	return s.baseURL + key
}

type resizeCall struct {
	src, dest string
	edge      int
}

type fakeResizer struct {
	calls     []resizeCall
	failEdges map[int]bool
}

func (r *fakeResizer) Fit(srcPath, destPath string, edge int) error {
	if r.failEdges[edge] {
		return fmt.Errorf("resize to %d failed", edge)
	}
	r.calls = append(r.calls, resizeCall{src: srcPath, dest: destPath, edge: edge})
	return os.WriteFile(destPath, []byte(fmt.Sprintf("thumb-%d", edge)), 0o644)
}

type fakeAccountDeleter struct {
	deleted []string
	errFor  map[string]error
}

func (d *fakeAccountDeleter) DeleteAccount(ctx context.Context, uid string) error {
	if err := d.errFor[uid]; err != nil {
		return err
	}
	d.deleted = append(d.deleted, uid)
	return nil
}
